package ifcreader_test

import (
	"fmt"
	"log"

	"github.com/nobatek/ifcreader"
)

func Example() {
	r, err := ifcreader.Open("testdata/sample_test.ifc")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(r.Project().Name())
	for _, storey := range r.ReadBuildingStoreys(ifcreader.ReadOptions{}) {
		fmt.Println(storey.Name())
	}

	door := r.ReadDoors()[0]
	height, _ := door.PropertyValue("height")
	fmt.Println(height)

	// Output:
	// Sample project
	// Ground floor
	// 2110
}

func ExampleReader_ReadEntities() {
	r, err := ifcreader.Open("testdata/sample_test.ifc")
	if err != nil {
		log.Fatal(err)
	}

	elements, err := r.ReadEntities("IfcBuildingElement")
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range elements {
		fmt.Println(e)
	}

	// Output:
	// IfcWallStandardCase #60 "South wall"
	// IfcDoor #70 "Entrance door"
	// IfcWindow #90 "Kitchen window"
	// IfcSlab #120 "Ground slab"
}

func ExampleObjectEntity_Parent() {
	r, err := ifcreader.Open("testdata/sample_test.ifc")
	if err != nil {
		log.Fatal(err)
	}

	for e := r.ReadSpaces(ifcreader.ReadOptions{})[0]; e != nil; e = e.Parent() {
		fmt.Println(e.TypeName())
	}

	// Output:
	// IfcSpace
	// IfcBuildingStorey
	// IfcBuilding
	// IfcSite
	// IfcProject
}
