package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customSchema = `SCHEMA IFC42;

TYPE IfcLabel = STRING;
END_TYPE;

TYPE IfcThingTypeEnum = ENUMERATION OF
	(BIG
	,SMALL);
END_TYPE;

ENTITY IfcRoot;
	GlobalId : IfcLabel;
END_ENTITY;

ENTITY IfcThing
 SUBTYPE OF (IfcRoot);
	Size : OPTIONAL IfcThingTypeEnum;
 WHERE
	WR1 : EXISTS(SELF.Size);
END_ENTITY;

END_SCHEMA;
`

func TestLoadEmbedded(t *testing.T) {
	for _, name := range Names() {
		s, err := Load(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Version)
		assert.NotEmpty(t, s.EntityNames())
	}

	_, err := Load("IFC99")
	assert.ErrorIs(t, err, ErrUnknownSchema)
}

func TestLoadIsCaseInsensitive(t *testing.T) {
	s, err := Load("ifc2x3")
	require.NoError(t, err)
	assert.Equal(t, "IFC2X3", s.Version)
}

func TestParseCustomSchema(t *testing.T) {
	s, err := Parse([]byte(customSchema))
	require.NoError(t, err)

	assert.Equal(t, "IFC42", s.Version)
	assert.Equal(t, []string{"IfcRoot", "IfcThing"}, s.EntityNames())
	assert.Equal(t, []string{"IfcLabel"}, s.DefinedTypeNames())
	assert.Equal(t, []string{"IfcThingTypeEnum"}, s.EnumerationNames())

	thing := s.Entity("IfcThing")
	require.NotNil(t, thing)
	assert.Equal(t, "IfcRoot", thing.SupertypeName)
	assert.Same(t, s.Entity("IfcRoot"), thing.Supertype())

	// the WHERE rule must not leak into the attribute listing
	assert.Equal(t, []string{"Size"}, thing.AttributeNames())
	assert.Equal(t, []string{"GlobalId", "Size"}, thing.AllAttributeNames())
	assert.True(t, thing.Attribute("Size").Optional)
}

func TestParseMissingSchemaDeclaration(t *testing.T) {
	_, err := Parse([]byte("ENTITY IfcThing;\nEND_ENTITY;\n"))
	assert.Error(t, err)
}

func TestParseUnknownSupertype(t *testing.T) {
	src := "SCHEMA BAD;\n\nENTITY IfcThing\n SUBTYPE OF (IfcMissing);\nEND_ENTITY;\n"
	_, err := Parse([]byte(src))
	assert.Error(t, err)
}

func TestParseSupertypeCycle(t *testing.T) {
	src := "SCHEMA BAD;\n\n" +
		"ENTITY IfcA\n SUBTYPE OF (IfcB);\nEND_ENTITY;\n\n" +
		"ENTITY IfcB\n SUBTYPE OF (IfcA);\nEND_ENTITY;\n"
	_, err := Parse([]byte(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supertype cycle")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.exp")
	require.NoError(t, os.WriteFile(path, []byte(customSchema), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "IFC42", s.Version)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.exp"))
	assert.Error(t, err)
}

func TestEntityInheritance(t *testing.T) {
	s, err := Load("IFC2X3")
	require.NoError(t, err)

	wall := s.Entity("IfcWallStandardCase")
	require.NotNil(t, wall)
	assert.True(t, wall.InheritsDirectly("IfcWall"))
	assert.True(t, wall.Inherits("IfcElement"))
	assert.True(t, wall.Inherits("IfcRoot"))
	assert.False(t, wall.Inherits("IfcSpatialStructureElement"))

	assert.True(t, s.EntityInherits("IfcZone", "IfcGroup"))
	assert.False(t, s.EntityInherits("NoSuchEntity", "IfcRoot"))

	spatial := s.Entity("IfcSpatialStructureElement")
	assert.Equal(t,
		[]string{"IfcBuilding", "IfcBuildingStorey", "IfcSite", "IfcSpace"},
		spatial.SubtypeNames(false))
	assert.Equal(t, []string{"IfcWallStandardCase"}, s.Entity("IfcWall").SubtypeNames(false))
	assert.Empty(t, s.Entity("IfcWindow").SubtypeNames(true))
}

func TestEntityAttributeOrder(t *testing.T) {
	s, err := Load("IFC2X3")
	require.NoError(t, err)

	door := s.Entity("IfcDoor")
	require.NotNil(t, door)

	// supertype attributes first, then declaration order: this matches the
	// positional argument list of a data record
	want := []string{
		"GlobalId", "OwnerHistory", "Name", "Description",
		"ObjectType", "ObjectPlacement", "Representation",
		"Tag", "OverallHeight", "OverallWidth",
	}
	assert.Equal(t, want, door.AllAttributeNames())

	assert.Equal(t, 8, door.AttributePosition("OverallHeight"))
	assert.Equal(t, -1, door.AttributePosition("NoSuchAttribute"))

	height := door.AttributeAt(8)
	require.NotNil(t, height)
	assert.Equal(t, "OverallHeight", height.Name)
	assert.True(t, height.Optional)
	assert.Equal(t, "IfcPositiveLengthMeasure", height.TypeName)
	assert.Nil(t, door.AttributeAt(len(door.AllAttributes())))

	qualified := door.QualifiedAttributeNames()
	assert.Equal(t, "IfcRoot.GlobalId", qualified[0])
	assert.Equal(t, "IfcDoor.OverallHeight", qualified[8])

	assert.Equal(t, "GlobalId", door.FindAttribute("GlobalId").Name)
	assert.Nil(t, door.Attribute("GlobalId"))

	root := s.Entity("IfcRoot")
	assert.Len(t, root.NotOptionalAttributes(), 2)
}

func TestEntityInverses(t *testing.T) {
	s, err := Load("IFC2X3")
	require.NoError(t, err)

	wall := s.Entity("IfcWall")
	inv := wall.FindInverse("ContainedInStructure")
	require.NotNil(t, inv)
	assert.Equal(t, "IfcRelContainedInSpatialStructure", inv.TypeName)
	assert.Equal(t, "RelatedElements", inv.ForAttr)
	assert.Equal(t, "0", inv.BoundMin)
	assert.Equal(t, "1", inv.BoundMax)
	assert.True(t, inv.IsAggregate)
	assert.True(t, inv.IsRelation())

	opening := s.Entity("IfcOpeningElement")
	voids := opening.FindInverse("VoidsElements")
	require.NotNil(t, voids)
	assert.Equal(t, "IfcRelVoidsElement", voids.TypeName)
	assert.Equal(t, "RelatedOpeningElement", voids.ForAttr)

	// an unbounded inverse to a non-relationship entity
	pset := s.Entity("IfcPropertySet")
	definesType := pset.FindInverse("DefinesType")
	require.NotNil(t, definesType)
	assert.Equal(t, "IfcTypeObject", definesType.TypeName)
	assert.Equal(t, "HasPropertySets", definesType.ForAttr)
	assert.False(t, definesType.IsRelation())

	// IsGroupedBy is declared without aggregate bounds
	group := s.Entity("IfcGroup")
	grouped := group.Inverse("IsGroupedBy")
	require.NotNil(t, grouped)
	assert.Equal(t, "IfcRelAssignsToGroup", grouped.TypeName)
	assert.Equal(t, "RelatingGroup", grouped.ForAttr)
	assert.False(t, grouped.IsAggregate)

	assert.Nil(t, wall.FindInverse("NoSuchInverse"))
}

func TestDefinedTypes(t *testing.T) {
	s, err := Load("IFC2X3")
	require.NoError(t, err)

	label := s.DefinedType("IfcLabel")
	require.NotNil(t, label)
	assert.Equal(t, "STRING", label.TypeName())
	assert.False(t, label.IsRef())
	assert.Nil(t, label.RefType())

	positive := s.DefinedType("IfcPositiveLengthMeasure")
	require.NotNil(t, positive)
	assert.Equal(t, "#IfcLengthMeasure", positive.TypeName())
	assert.True(t, positive.IsRef())
	require.NotNil(t, positive.RefType())
	assert.Equal(t, "IfcLengthMeasure", positive.RefType().Name)

	compound := s.DefinedType("IfcCompoundPlaneAngleMeasure")
	require.NotNil(t, compound)
	assert.Equal(t, "LIST [3:4] OF INTEGER", compound.TypeName())
	assert.False(t, compound.IsRef())
}

func TestSelectTypesAndEnumerations(t *testing.T) {
	s, err := Load("IFC2X3")
	require.NoError(t, err)

	value := s.SelectType("IfcValue")
	require.NotNil(t, value)
	assert.Equal(t, []string{"IfcMeasureValue", "IfcSimpleValue"}, value.MemberNames())
	assert.Len(t, value.Members(), 2)

	// IfcUnit members are not part of the schema subset
	unit := s.SelectType("IfcUnit")
	require.NotNil(t, unit)
	assert.Len(t, unit.MemberNames(), 3)
	assert.Empty(t, unit.Members())

	composition := s.Enumeration("IfcElementCompositionEnum")
	require.NotNil(t, composition)
	assert.Equal(t, []string{"COMPLEX", "ELEMENT", "PARTIAL"}, composition.Values())
}

func TestElementLookup(t *testing.T) {
	s, err := Load("IFC2X3")
	require.NoError(t, err)

	assert.IsType(t, &Entity{}, s.Element("IfcWall"))
	assert.IsType(t, &DefinedType{}, s.Element("IfcLabel"))
	assert.IsType(t, &SelectType{}, s.Element("IfcValue"))
	assert.IsType(t, &Enumeration{}, s.Element("IfcSlabTypeEnum"))
	assert.Nil(t, s.Element("IfcNoSuchThing"))

	assert.Equal(t, "IfcWall", s.Element("IfcWall").ElementName())
}

func TestCanonicalName(t *testing.T) {
	s, err := Load("IFC2X3")
	require.NoError(t, err)

	assert.Equal(t, "IfcWallStandardCase", s.CanonicalName("IFCWALLSTANDARDCASE"))
	assert.Equal(t, "IfcLengthMeasure", s.CanonicalName("IFCLENGTHMEASURE"))
	assert.Equal(t, "IFCNOSUCHTHING", s.CanonicalName("IFCNOSUCHTHING"))
}

func TestSchemaVersionDifferences(t *testing.T) {
	ifc2x3, err := Load("IFC2X3")
	require.NoError(t, err)
	ifc4, err := Load("IFC4")
	require.NoError(t, err)

	// typed-object binding moved to a dedicated inverse in IFC4
	assert.Nil(t, ifc2x3.Entity("IfcWall").FindInverse("IsTypedBy"))
	typed := ifc4.Entity("IfcWall").FindInverse("IsTypedBy")
	require.NotNil(t, typed)
	assert.Equal(t, "IfcRelDefinesByType", typed.TypeName)

	assert.Equal(t, "IfcRelDefines",
		ifc2x3.Entity("IfcWall").FindInverse("IsDefinedBy").TypeName)
	assert.Equal(t, "IfcRelDefinesByProperties",
		ifc4.Entity("IfcWall").FindInverse("IsDefinedBy").TypeName)

	assert.False(t, ifc2x3.Entity("IfcSite").FindAttribute("CompositionType").Optional)
	assert.True(t, ifc4.Entity("IfcSite").FindAttribute("CompositionType").Optional)

	assert.NotNil(t, ifc4.Entity("IfcSpace").Attribute("PredefinedType"))
	assert.Nil(t, ifc2x3.Entity("IfcSpace").Attribute("PredefinedType"))
}
