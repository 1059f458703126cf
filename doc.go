// Package ifcreader reads building models from IFC files, the STEP
// exchange format standardized as ISO 10303-21, and exposes their spatial
// structure, property sets and quantities through a small read-only API.
//
// A Reader decodes the file, loads the EXPRESS schema the file declares
// (IFC2X3 and IFC4 ship embedded) and checks that the model defines a
// unique IfcProject:
//
//	r, err := ifcreader.Open("building.ifc")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, storey := range r.ReadBuildingStoreys(ifcreader.ReadOptions{}) {
//		fmt.Println(storey.Name())
//	}
//
// Entities come back wrapped: an ObjectEntity resolves its spatial parent,
// its children, its defining type object, its property sets and its
// quantities by following the relation instances of the model, guided by
// the INVERSE declarations of the schema. Lookups are lazy and cached, so
// a single ObjectEntity is not safe for concurrent use; the Reader itself
// is read-only after Open.
//
// Property values travel as plain Go values: measures unwrap to float64,
// counts to int64, labels to string, booleans to bool. Names are matched
// through codenames, a normalized lower-case form with spaces and
// punctuation removed, so "Identity Data" is addressed as "identitydata".
package ifcreader
