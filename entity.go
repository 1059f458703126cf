package ifcreader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nobatek/ifcreader/schema"
	"github.com/nobatek/ifcreader/step"
)

// Entity is the read-only view over one data instance of the model. It
// binds the instance's positional arguments to the attribute names the
// schema declares for its type.
type Entity struct {
	reader *Reader
	raw    *step.Instance
	def    *schema.Entity // nil when the schema does not declare the type
}

// TypeName returns the schema spelling of the instance type, e.g.
// "IfcWallStandardCase".
func (e *Entity) TypeName() string {
	return e.reader.schema.CanonicalName(e.raw.Type)
}

// ID returns the instance identifier within the exchange file.
func (e *Entity) ID() int64 { return e.raw.ID }

// GlobalID returns the GlobalId attribute, or "" for types without one.
func (e *Entity) GlobalID() string { return e.attrString("GlobalId") }

// Name returns the Name attribute, or "".
func (e *Entity) Name() string { return e.attrString("Name") }

// Description returns the Description attribute, or "".
func (e *Entity) Description() string { return e.attrString("Description") }

// Codename returns the normalized form of Name.
func (e *Entity) Codename() string { return Codename(e.Name()) }

// SchemaVersion returns the schema identifier the model declares.
func (e *Entity) SchemaVersion() string { return e.reader.schema.Version }

// Raw returns the underlying data instance.
func (e *Entity) Raw() *step.Instance { return e.raw }

// Definition returns the schema declaration of the instance type, or nil.
func (e *Entity) Definition() *schema.Entity { return e.def }

// IsA reports whether the instance is of the given type, directly or
// through inheritance. The type name is matched case-insensitively.
func (e *Entity) IsA(typeName string) bool {
	want := e.reader.schema.CanonicalName(typeName)
	if strings.EqualFold(e.TypeName(), want) {
		return true
	}
	return e.reader.schema.EntityInherits(e.TypeName(), want)
}

// Attr returns an attribute by name as a plain Go value: int64, float64,
// string, bool, a referenced *step.Instance, or a []any for aggregates.
// Unset and unknown attributes come back nil.
func (e *Entity) Attr(name string) any {
	return e.reader.plainValue(e.rawAttr(name))
}

// Metadata returns every attribute of the instance keyed by name, as
// plain values.
func (e *Entity) Metadata() map[string]any {
	if e.def == nil {
		return nil
	}
	meta := make(map[string]any, len(e.def.AllAttributes()))
	for i, attr := range e.def.AllAttributes() {
		meta[attr.Name] = e.reader.plainValue(e.raw.Arg(i))
	}
	return meta
}

// Equal reports whether both views designate the same model object.
// Instances carrying a GlobalId compare by it.
func (e *Entity) Equal(other *Entity) bool {
	if other == nil {
		return false
	}
	if gid := e.GlobalID(); gid != "" {
		return gid == other.GlobalID()
	}
	return e.reader == other.reader && e.raw.ID == other.raw.ID
}

func (e *Entity) String() string {
	if name := e.Name(); name != "" {
		return fmt.Sprintf("%s #%d %q", e.TypeName(), e.raw.ID, name)
	}
	return fmt.Sprintf("%s #%d", e.TypeName(), e.raw.ID)
}

func (e *Entity) attrString(name string) string {
	s, _ := e.Attr(name).(string)
	return s
}

func (e *Entity) rawAttr(name string) step.Value {
	if e.def == nil {
		return step.Value{}
	}
	pos := e.def.AttributePosition(name)
	if pos < 0 {
		return step.Value{}
	}
	return e.raw.Arg(pos)
}

// attrRef resolves a single-reference attribute.
func (e *Entity) attrRef(name string) *step.Instance {
	v := e.rawAttr(name)
	if v.Kind != step.KindRef {
		return nil
	}
	return e.reader.file.Instance(v.Ref)
}

// attrInstances resolves a reference or aggregate-of-references attribute.
func (e *Entity) attrInstances(name string) []*step.Instance {
	v := e.rawAttr(name)
	var ids []int64
	switch v.Kind {
	case step.KindRef:
		ids = []int64{v.Ref}
	case step.KindList:
		for _, item := range v.List {
			if item.Kind == step.KindRef {
				ids = append(ids, item.Ref)
			}
		}
	}
	insts := make([]*step.Instance, 0, len(ids))
	for _, id := range ids {
		if inst := e.reader.file.Instance(id); inst != nil {
			insts = append(insts, inst)
		}
	}
	return insts
}

// inverseRelated emulates an INVERSE attribute: it returns the relation
// instances of the inverse's target type whose FOR attribute references
// this instance, ascendingly sorted by identifier.
func (e *Entity) inverseRelated(name string) []*step.Instance {
	if e.def == nil {
		return nil
	}
	inv := e.def.FindInverse(name)
	if inv == nil {
		return nil
	}
	var rels []*step.Instance
	for _, ref := range e.reader.file.ReferencedBy(e.raw.ID) {
		src := ref.Source
		srcName := e.reader.schema.CanonicalName(src.Type)
		if srcName != inv.TypeName && !e.reader.schema.EntityInherits(srcName, inv.TypeName) {
			continue
		}
		srcDef := e.reader.schema.Entity(srcName)
		if srcDef == nil {
			continue
		}
		attr := srcDef.AttributeAt(ref.Arg)
		if attr == nil || attr.Name != inv.ForAttr {
			continue
		}
		rels = append(rels, src)
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].ID < rels[j].ID })
	return rels
}

// ObjectEntity is an Entity with object semantics: it resolves the
// relations tying the object into the model. Resolutions are lazy and
// cached; an ObjectEntity is not safe for concurrent use.
type ObjectEntity struct {
	Entity

	parent       *ObjectEntity
	parentLoaded bool

	kids       []*ObjectEntity
	kidsLoaded bool

	objectType       *Entity
	objectTypeLoaded bool

	psets       []*PropertySet
	psetsLoaded bool

	quantities       []*Quantity
	quantitiesLoaded bool
}

// ObjectType returns the Attr("ObjectType") label. It shadows the
// embedded attribute access on purpose: the defining type object is
// reached through TypeObject.
func (o *ObjectEntity) ObjectType() string { return o.attrString("ObjectType") }

// CompositionType returns the CompositionType attribute of a spatial
// structure element, or "".
func (o *ObjectEntity) CompositionType() string { return o.attrString("CompositionType") }

// IsElement reports whether a spatial structure element is undivided,
// i.e. neither a complex structure nor a part of one.
func (o *ObjectEntity) IsElement() bool { return o.CompositionType() == "ELEMENT" }

// Parent returns the entity this object belongs to, or nil. Openings
// resolve to the element they void, elements to their containing spatial
// structure, and spatial structures to the object they decompose.
func (o *ObjectEntity) Parent() *ObjectEntity {
	if !o.parentLoaded {
		o.parent = o.loadParent()
		o.parentLoaded = true
	}
	return o.parent
}

func (o *ObjectEntity) loadParent() *ObjectEntity {
	// most specific containment first
	if o.IsA("IfcFeatureElementSubtraction") {
		if rels := o.inverseRelated("VoidsElements"); len(rels) == 1 {
			rel := o.reader.newEntity(rels[0])
			return o.reader.wrapObject(rel.attrRef("RelatingBuildingElement"))
		}
	}
	if o.IsA("IfcElement") {
		if rels := o.inverseRelated("ContainedInStructure"); len(rels) == 1 {
			rel := o.reader.newEntity(rels[0])
			return o.reader.wrapObject(rel.attrRef("RelatingStructure"))
		}
	}
	if o.IsA("IfcObjectDefinition") {
		if rels := o.inverseRelated("Decomposes"); len(rels) == 1 {
			rel := o.reader.newEntity(rels[0])
			return o.reader.wrapObject(rel.attrRef("RelatingObject"))
		}
	}
	return nil
}

// Kids returns the objects decomposing this one, ascendingly sorted by
// identifier. Zones resolve the spaces grouped into them.
func (o *ObjectEntity) Kids() []*ObjectEntity {
	if !o.kidsLoaded {
		o.kids = o.loadKids()
		o.kidsLoaded = true
	}
	return o.kids
}

func (o *ObjectEntity) loadKids() []*ObjectEntity {
	inverse := "IsDecomposedBy"
	if o.IsA("IfcZone") {
		inverse = "IsGroupedBy"
	}
	var kids []*ObjectEntity
	for _, relInst := range o.inverseRelated(inverse) {
		rel := o.reader.newEntity(relInst)
		for _, inst := range rel.attrInstances("RelatedObjects") {
			kids = append(kids, o.reader.wrapObject(inst))
		}
	}
	sort.Slice(kids, func(i, j int) bool { return kids[i].raw.ID < kids[j].raw.ID })
	return kids
}

// TypeObject returns the type object defining this occurrence, reached
// through an IfcRelDefinesByType relation, or nil.
func (o *ObjectEntity) TypeObject() *Entity {
	if !o.objectTypeLoaded {
		o.objectType = o.loadTypeObject()
		o.objectTypeLoaded = true
	}
	return o.objectType
}

func (o *ObjectEntity) loadTypeObject() *Entity {
	// IFC4 carries a dedicated IsTypedBy inverse; IFC2X3 folds typing
	// into IsDefinedBy
	rels := o.inverseRelated("IsTypedBy")
	rels = append(rels, o.inverseRelated("IsDefinedBy")...)
	for _, relInst := range o.relationsOfType(rels, "IfcRelDefinesByType") {
		rel := o.reader.newEntity(relInst)
		if target := rel.attrRef("RelatingType"); target != nil {
			wrapped := o.reader.newEntity(target)
			return &wrapped
		}
	}
	return nil
}

// relationsOfType keeps the relation instances of the wanted type.
func (o *ObjectEntity) relationsOfType(rels []*step.Instance, typeName string) []*step.Instance {
	var out []*step.Instance
	for _, rel := range rels {
		name := o.reader.schema.CanonicalName(rel.Type)
		if name == typeName || o.reader.schema.EntityInherits(name, typeName) {
			out = append(out, rel)
		}
	}
	return out
}

// PropertySets returns the property sets attached to the object, the
// directly related ones first, then those carried by its type object.
func (o *ObjectEntity) PropertySets() []*PropertySet {
	if !o.psetsLoaded {
		o.psets = o.loadPropertySets()
		o.psetsLoaded = true
	}
	return o.psets
}

func (o *ObjectEntity) loadPropertySets() []*PropertySet {
	var psets []*PropertySet
	if o.IsA("IfcTypeObject") {
		// type objects carry their sets directly
		for _, inst := range o.attrInstances("HasPropertySets") {
			wrapped := o.reader.newEntity(inst)
			if wrapped.IsA("IfcElementQuantity") {
				continue
			}
			psets = append(psets, &PropertySet{Entity: wrapped})
		}
		return psets
	}
	for _, relInst := range o.relationsOfType(
		o.inverseRelated("IsDefinedBy"), "IfcRelDefinesByProperties") {
		rel := o.reader.newEntity(relInst)
		def := rel.attrRef("RelatingPropertyDefinition")
		if def == nil {
			continue
		}
		wrapped := o.reader.newEntity(def)
		if wrapped.IsA("IfcElementQuantity") {
			continue // exposed through Quantities
		}
		psets = append(psets, &PropertySet{Entity: wrapped})
	}
	if typeObj := o.TypeObject(); typeObj != nil {
		for _, inst := range typeObj.attrInstances("HasPropertySets") {
			wrapped := o.reader.newEntity(inst)
			if wrapped.IsA("IfcElementQuantity") {
				continue
			}
			psets = append(psets, &PropertySet{Entity: wrapped, fromType: true})
		}
	}
	return psets
}

// PropertySetCodenames returns the codename of every attached property
// set, in PropertySets order.
func (o *ObjectEntity) PropertySetCodenames() []string {
	psets := o.PropertySets()
	names := make([]string, len(psets))
	for i, p := range psets {
		names[i] = p.Codename()
	}
	return names
}

// PropertySet returns the attached property set matching a codename, or
// nil.
func (o *ObjectEntity) PropertySet(codename string) *PropertySet {
	for _, p := range o.PropertySets() {
		if p.Codename() == codename {
			return p
		}
	}
	return nil
}

// Properties returns the properties of every attached property set.
func (o *ObjectEntity) Properties() []*Property {
	var props []*Property
	for _, p := range o.PropertySets() {
		props = append(props, p.Properties()...)
	}
	return props
}

// PropertiesIn returns the properties of the property set matching a
// codename.
func (o *ObjectEntity) PropertiesIn(psetCodename string) []*Property {
	if p := o.PropertySet(psetCodename); p != nil {
		return p.Properties()
	}
	return nil
}

// PropertyCodenames returns the codename of every property across the
// attached property sets.
func (o *ObjectEntity) PropertyCodenames() []string {
	props := o.Properties()
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Codename()
	}
	return names
}

// PropertyCodenamesIn returns the property codenames of one property set.
func (o *ObjectEntity) PropertyCodenamesIn(psetCodename string) []string {
	if p := o.PropertySet(psetCodename); p != nil {
		return p.PropertyCodenames()
	}
	return nil
}

// Property returns the first property matching a codename across the
// attached property sets, or nil.
func (o *ObjectEntity) Property(codename string) *Property {
	for _, p := range o.Properties() {
		if p.Codename() == codename {
			return p
		}
	}
	return nil
}

// PropertyIn returns the property matching a codename within one property
// set, or nil.
func (o *ObjectEntity) PropertyIn(psetCodename, codename string) *Property {
	if p := o.PropertySet(psetCodename); p != nil {
		return p.Property(codename)
	}
	return nil
}

// PropertyValue returns the value and unit of the first property matching
// a codename. Both come back nil when no property matches.
func (o *ObjectEntity) PropertyValue(codename string) (any, any) {
	if p := o.Property(codename); p != nil {
		return p.Value(), p.Unit()
	}
	return nil, nil
}

// PropertyValueIn returns the value and unit of a property within one
// property set. Both come back nil when no property matches.
func (o *ObjectEntity) PropertyValueIn(psetCodename, codename string) (any, any) {
	if p := o.PropertyIn(psetCodename, codename); p != nil {
		return p.Value(), p.Unit()
	}
	return nil, nil
}

// Quantities returns the physical quantities attached to the object
// through its element quantity sets.
func (o *ObjectEntity) Quantities() []*Quantity {
	if !o.quantitiesLoaded {
		o.quantities = o.loadQuantities()
		o.quantitiesLoaded = true
	}
	return o.quantities
}

func (o *ObjectEntity) loadQuantities() []*Quantity {
	var quantities []*Quantity
	for _, relInst := range o.relationsOfType(
		o.inverseRelated("IsDefinedBy"), "IfcRelDefinesByProperties") {
		rel := o.reader.newEntity(relInst)
		def := rel.attrRef("RelatingPropertyDefinition")
		if def == nil {
			continue
		}
		set := o.reader.newEntity(def)
		if !set.IsA("IfcElementQuantity") {
			continue
		}
		for _, inst := range set.attrInstances("Quantities") {
			q := o.reader.newEntity(inst)
			if !q.IsA("IfcPhysicalSimpleQuantity") {
				o.reader.log.Warn("skipping unsupported quantity",
					"type", q.TypeName(), "id", q.ID())
				continue
			}
			quantities = append(quantities, &Quantity{Entity: q})
		}
	}
	return quantities
}

// Quantity returns the quantity matching a codename, or nil.
func (o *ObjectEntity) Quantity(codename string) *Quantity {
	for _, q := range o.Quantities() {
		if q.Codename() == codename {
			return q
		}
	}
	return nil
}
