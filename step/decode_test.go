package step

import (
	"errors"
	"strings"
	"testing"
)

const testExchange = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('project.ifc','2017-06-20T14:53:40',('Architect'),('Nobatek'),'Preprocessor 1.0','System 2.0','none');
FILE_SCHEMA(('IFC2X3'));
ENDSEC;
DATA;
/* a single storey with one wall */
#1=IFCPROJECT('2ZdPGkCf95VuJzKx4GbFqT',$,'Sample project',$,$,$,$,(),$);
#2= IFCWALL('0m0qSxBeX3NvLYrvKO8mUj',$,'South wall','A ''load-bearing'' wall',$,$,$,'W-01');
#3=IFCPROPERTYSINGLEVALUE('Height',$,IFCLENGTHMEASURE(2110.),$);
#4=IFCPROPERTYSET('1gXTy1H3r56hwFJzD07qeo',$,'Dimensions',$,(#3));
#5=IFCRELDEFINESBYPROPERTIES('2aBcD3eFg7HiJkLmN0pQrS',$,$,$,(#2),#4);
#6=IFCQUANTITYAREA('NetArea',$,$,-1.5E-1);
#7=IFCCARTESIANPOINT((0.,1.,2110.));
ENDSEC;
END-ISO-10303-21;
`

func decodeTestFile(t *testing.T) *File {
	t.Helper()
	f, err := Decode([]byte(testExchange))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return f
}

func TestDecodeHeader(t *testing.T) {
	f := decodeTestFile(t)

	if got := f.SchemaIdentifier(); got != "IFC2X3" {
		t.Errorf("SchemaIdentifier = %q, want IFC2X3", got)
	}
	if f.Header.Name != "project.ifc" {
		t.Errorf("Header.Name = %q", f.Header.Name)
	}
	if len(f.Header.Author) != 1 || f.Header.Author[0] != "Architect" {
		t.Errorf("Header.Author = %v", f.Header.Author)
	}
	if f.Header.ImplementationLevel != "2;1" {
		t.Errorf("Header.ImplementationLevel = %q", f.Header.ImplementationLevel)
	}
	if len(f.Header.Description) != 1 {
		t.Errorf("Header.Description = %v", f.Header.Description)
	}
}

func TestDecodeInstances(t *testing.T) {
	f := decodeTestFile(t)

	if got := f.InstanceCount(); got != 7 {
		t.Fatalf("InstanceCount = %d, want 7", got)
	}

	wall := f.Instance(2)
	if wall == nil {
		t.Fatal("Instance(2) = nil")
	}
	if wall.Type != "IFCWALL" {
		t.Errorf("wall.Type = %q", wall.Type)
	}
	if got := wall.Arg(0).Str; got != "0m0qSxBeX3NvLYrvKO8mUj" {
		t.Errorf("wall GlobalId = %q", got)
	}
	// '' collapses to a single quote
	if got := wall.Arg(3).Str; got != "A 'load-bearing' wall" {
		t.Errorf("wall description = %q", got)
	}
	if got := wall.Arg(4); got.Kind != KindNull {
		t.Errorf("wall arg 4 kind = %v, want null", got.Kind)
	}

	// typed value
	prop := f.Instance(3)
	nominal := prop.Arg(2)
	if nominal.Kind != KindTyped || nominal.TypeName != "IFCLENGTHMEASURE" {
		t.Fatalf("nominal value = %+v", nominal)
	}
	if nominal.Inner.Kind != KindReal || nominal.Inner.Real != 2110 {
		t.Errorf("nominal inner = %+v", nominal.Inner)
	}

	// scientific notation
	area := f.Instance(6)
	if got := area.Arg(3).Real; got != -0.15 {
		t.Errorf("area value = %v, want -0.15", got)
	}

	// aggregate of reals
	point := f.Instance(7)
	coords := point.Arg(0)
	if coords.Kind != KindList || len(coords.List) != 3 {
		t.Fatalf("coords = %+v", coords)
	}
	if coords.List[2].Real != 2110 {
		t.Errorf("coords[2] = %v", coords.List[2].Real)
	}

	// out-of-range access is a null value, not a panic
	if got := wall.Arg(99); got.Kind != KindNull {
		t.Errorf("Arg(99) kind = %v, want null", got.Kind)
	}
}

func TestInstancesOfType(t *testing.T) {
	f := decodeTestFile(t)

	walls := f.InstancesOfType("IfcWall")
	if len(walls) != 1 || walls[0].ID != 2 {
		t.Fatalf("InstancesOfType(IfcWall) = %v", walls)
	}
	if got := f.InstancesOfType("IFCPROPERTYSET"); len(got) != 1 {
		t.Errorf("InstancesOfType(IFCPROPERTYSET) = %v", got)
	}
	if got := f.InstancesOfType("IfcDoor"); got != nil {
		t.Errorf("InstancesOfType(IfcDoor) = %v, want nil", got)
	}

	names := f.TypeNames()
	if len(names) != 7 {
		t.Errorf("TypeNames() = %v", names)
	}
}

func TestInstancesOrder(t *testing.T) {
	f := decodeTestFile(t)

	all := f.Instances()
	if len(all) != 7 {
		t.Fatalf("Instances() returned %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("instances out of order: %d before %d", all[i-1].ID, all[i].ID)
		}
	}
}

func TestReferencedBy(t *testing.T) {
	f := decodeTestFile(t)

	// #2 (the wall) is referenced once, from #5's RelatedObjects list (arg 4)
	refs := f.ReferencedBy(2)
	if len(refs) != 1 {
		t.Fatalf("ReferencedBy(2) = %v", refs)
	}
	if refs[0].Source.ID != 5 || refs[0].Arg != 4 {
		t.Errorf("ref = {source %d, arg %d}, want {5, 4}", refs[0].Source.ID, refs[0].Arg)
	}

	// #4 (the pset) is referenced from #5 arg 5
	refs = f.ReferencedBy(4)
	if len(refs) != 1 || refs[0].Source.ID != 5 || refs[0].Arg != 5 {
		t.Errorf("ReferencedBy(4) = %v", refs)
	}

	// #1 (the project) is referenced by nothing
	if got := f.ReferencedBy(1); got != nil {
		t.Errorf("ReferencedBy(1) = %v, want nil", got)
	}
}

func TestValueString(t *testing.T) {
	f := decodeTestFile(t)

	prop := f.Instance(3)
	if got := prop.Arg(2).String(); got != "IFCLENGTHMEASURE(2110)" {
		t.Errorf("typed value String() = %q", got)
	}
	if got := (Value{Kind: KindEnum, Str: "ELEMENT"}).String(); got != ".ELEMENT." {
		t.Errorf("enum String() = %q", got)
	}
	if got := (Value{Kind: KindString, Str: "it's"}).String(); got != "'it''s'" {
		t.Errorf("string String() = %q", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"not step", "hello world"},
		{"missing data section", "ISO-10303-21;\nHEADER;\nENDSEC;\nEND-ISO-10303-21;"},
		{"unterminated string", "ISO-10303-21;\nHEADER;\nFILE_SCHEMA(('IFC2X3));\nENDSEC;\nDATA;\nENDSEC;\nEND-ISO-10303-21;"},
		{"unterminated comment", "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n/* oops\nENDSEC;\nEND-ISO-10303-21;"},
		{"bad instance", "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1=;\nENDSEC;\nEND-ISO-10303-21;"},
		{"missing terminator", "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\nENDSEC;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.src)); err == nil {
				t.Errorf("Decode succeeded, want error")
			}
		})
	}
}

func TestDecodeNotExchangeFile(t *testing.T) {
	_, err := Decode([]byte("something else entirely"))
	if !errors.Is(err, ErrNotExchangeFile) {
		t.Errorf("err = %v, want ErrNotExchangeFile", err)
	}
}

func TestDecodeDuplicateID(t *testing.T) {
	src := strings.Replace(testExchange, "#7=IFCCARTESIANPOINT", "#1=IFCCARTESIANPOINT", 1)
	_, err := Decode([]byte(src))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestSyntaxErrorOffset(t *testing.T) {
	_, err := Decode([]byte("ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1=IFCWALL(@);\nENDSEC;\nEND-ISO-10303-21;"))
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if synErr.Offset <= 0 {
		t.Errorf("Offset = %d, want > 0", synErr.Offset)
	}
}
