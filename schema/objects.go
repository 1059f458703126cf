package schema

import (
	"regexp"
	"sort"
	"strings"
)

// Element is implemented by every declaration kind a schema holds: defined
// types, select types, enumerations and entities.
type Element interface {
	ElementName() string
}

var simpleTypes = map[string]bool{
	"INTEGER": true, "REAL": true, "STRING": true,
	"NUMBER": true, "LOGICAL": true, "BOOLEAN": true,
}

// DefinedType is a `TYPE X = Y;` declaration.
type DefinedType struct {
	Name string

	schema   *Schema
	rawValue string
}

func (t *DefinedType) ElementName() string { return t.Name }

// TypeName returns the underlying type of the declaration. When the
// underlying type is not one of the EXPRESS simple types, the declaration
// references another defined type and the result is prefixed with '#'.
func (t *DefinedType) TypeName() string {
	fields := strings.FieldsFunc(t.rawValue, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')'
	})
	for _, f := range fields {
		if simpleTypes[f] {
			return t.rawValue
		}
	}
	return "#" + t.rawValue
}

// IsRef reports whether the declaration references another defined type.
func (t *DefinedType) IsRef() bool {
	return strings.HasPrefix(t.TypeName(), "#")
}

// RefType returns the referenced defined type, or nil for simple types.
func (t *DefinedType) RefType() *DefinedType {
	if t.IsRef() {
		return t.schema.DefinedType(t.rawValue)
	}
	return nil
}

// SelectType is a `TYPE X = SELECT (...)` declaration.
type SelectType struct {
	Name string

	schema   *Schema
	rawTypes string
}

func (t *SelectType) ElementName() string { return t.Name }

// MemberNames returns the names in the select list, ascendingly sorted.
func (t *SelectType) MemberNames() []string {
	names := strings.Split(strings.ReplaceAll(t.rawTypes, "\n\t", ""), ",")
	sort.Strings(names)
	return names
}

// Members resolves the select list against the schema. Members the schema
// does not declare are skipped.
func (t *SelectType) Members() []Element {
	var members []Element
	for _, name := range t.MemberNames() {
		if el := t.schema.Element(name); el != nil {
			members = append(members, el)
		}
	}
	return members
}

// Enumeration is a `TYPE X = ENUMERATION OF (...)` declaration.
type Enumeration struct {
	Name string

	schema    *Schema
	rawValues string
}

func (t *Enumeration) ElementName() string { return t.Name }

// Values returns the enumeration values, ascendingly sorted.
func (t *Enumeration) Values() []string {
	values := strings.Split(strings.ReplaceAll(t.rawValues, "\n\t", ""), ",")
	sort.Strings(values)
	return values
}

// attrTypeRe extracts aggregate bounds, the target type name and the FOR
// clause from a raw attribute type declaration.
var attrTypeRe = regexp.MustCompile(
	`(?:(?:SET|LIST)\s(?:\[([0-9]+):([?0-9]+)\])?(?:\sOF\s)?)?(Ifc[a-zA-Z0-9]+)(?:\sFOR (.*))?$`)

// Attribute describes one explicit attribute of an entity.
type Attribute struct {
	Name   string
	Entity *Entity // declaring entity

	// TypeName is the attribute's target type. For aggregates it is the
	// element type; for non-IFC types it is the raw declaration.
	TypeName    string
	Optional    bool
	IsAggregate bool   // SET or LIST
	BoundMin    string // "" when not an aggregate
	BoundMax    string // may be "?"

	rawType string
}

// TypeInfo resolves the attribute's target type against the schema.
// Returns nil when the schema does not declare it.
func (a *Attribute) TypeInfo() Element {
	return a.Entity.schema.Element(a.TypeName)
}

func newAttribute(name, rawType string, entity *Entity) *Attribute {
	a := &Attribute{
		Name:     name,
		Entity:   entity,
		rawType:  rawType,
		Optional: strings.HasPrefix(rawType, "OPTIONAL"),
		TypeName: strings.TrimPrefix(rawType, "OPTIONAL "),
	}
	if m := attrTypeRe.FindStringSubmatch(rawType); m != nil {
		a.BoundMin = m[1]
		a.BoundMax = m[2]
		a.IsAggregate = a.BoundMin != "" || a.BoundMax != ""
		a.TypeName = m[3]
	}
	return a
}

// Inverse describes one INVERSE clause of an entity: a set of instances of
// TypeName whose ForAttr attribute points back at the declaring entity.
type Inverse struct {
	Attribute
	ForAttr string
}

// IsRelation reports whether the inverse's target is an IfcRelationship.
// Not every inverse target is one.
func (inv *Inverse) IsRelation() bool {
	return inv.Entity.schema.EntityInherits(inv.TypeName, "IfcRelationship")
}

func newInverse(name, rawType string, entity *Entity) *Inverse {
	inv := &Inverse{Attribute: *newAttribute(name, rawType, entity)}
	if m := attrTypeRe.FindStringSubmatch(rawType); m != nil {
		inv.ForAttr = m[4]
	}
	return inv
}

// Entity is an `ENTITY ... END_ENTITY;` declaration.
type Entity struct {
	Name          string
	SupertypeName string // "" for root entities

	schema    *Schema
	rawData   string
	attrs     []*Attribute // declaration order
	attrIndex map[string]*Attribute
	inverses  []*Inverse
	invIndex  map[string]*Inverse

	// Flattened attribute list, supertype attributes first. This ordering
	// is what binds STEP positional arguments to names. Filled in a second
	// pass once all entities are known.
	all      []*Attribute
	allIndex map[string]int
	allInv   []*Inverse
}

func (e *Entity) ElementName() string { return e.Name }

// Supertype returns the direct supertype entity, or nil.
func (e *Entity) Supertype() *Entity {
	if e.SupertypeName == "" {
		return nil
	}
	return e.schema.Entity(e.SupertypeName)
}

// Attributes returns the entity's own attributes in declaration order.
func (e *Entity) Attributes() []*Attribute {
	return e.attrs
}

// AttributeNames returns the entity's own attribute names in declaration
// order.
func (e *Entity) AttributeNames() []string {
	names := make([]string, len(e.attrs))
	for i, a := range e.attrs {
		names[i] = a.Name
	}
	return names
}

// NotOptionalAttributes returns the entity's own attributes that are not
// marked OPTIONAL, in declaration order.
func (e *Entity) NotOptionalAttributes() []*Attribute {
	var attrs []*Attribute
	for _, a := range e.attrs {
		if !a.Optional {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// Attribute returns one of the entity's own attributes by name, or nil.
func (e *Entity) Attribute(name string) *Attribute {
	return e.attrIndex[name]
}

// Inverses returns the entity's own INVERSE clauses in declaration order.
func (e *Entity) Inverses() []*Inverse {
	return e.inverses
}

// Inverse returns one of the entity's own INVERSE clauses by name, or nil.
func (e *Entity) Inverse(name string) *Inverse {
	return e.invIndex[name]
}

// AllAttributes returns all attributes including inherited ones, supertype
// attributes first, each group in declaration order. In a STEP data record
// this ordering matches the positional argument list.
func (e *Entity) AllAttributes() []*Attribute {
	return e.all
}

// AllAttributeNames returns the names of AllAttributes.
func (e *Entity) AllAttributeNames() []string {
	names := make([]string, len(e.all))
	for i, a := range e.all {
		names[i] = a.Name
	}
	return names
}

// QualifiedAttributeNames is AllAttributeNames with each name prefixed by
// its declaring entity ("IfcRoot.GlobalId").
func (e *Entity) QualifiedAttributeNames() []string {
	names := make([]string, len(e.all))
	for i, a := range e.all {
		names[i] = a.Entity.Name + "." + a.Name
	}
	return names
}

// AttributePosition returns the positional index of an attribute (own or
// inherited) in a STEP record, or -1.
func (e *Entity) AttributePosition(name string) int {
	if i, ok := e.allIndex[name]; ok {
		return i
	}
	return -1
}

// AttributeAt returns the attribute at a STEP argument position, or nil.
func (e *Entity) AttributeAt(i int) *Attribute {
	if i < 0 || i >= len(e.all) {
		return nil
	}
	return e.all[i]
}

// FindAttribute returns an attribute by name, searching the inheritance
// chain. Returns nil when no entity in the chain declares it.
func (e *Entity) FindAttribute(name string) *Attribute {
	if i, ok := e.allIndex[name]; ok {
		return e.all[i]
	}
	return nil
}

// AllInverses returns all INVERSE clauses including inherited ones,
// supertype clauses first.
func (e *Entity) AllInverses() []*Inverse {
	return e.allInv
}

// FindInverse returns an INVERSE clause by name, searching the inheritance
// chain. Returns nil when no entity in the chain declares it.
func (e *Entity) FindInverse(name string) *Inverse {
	for _, inv := range e.allInv {
		if inv.Name == name {
			return inv
		}
	}
	return nil
}

// Inherits reports whether parentName is a supertype anywhere up the chain.
func (e *Entity) Inherits(parentName string) bool {
	for cur := e; cur != nil; cur = cur.Supertype() {
		if cur.SupertypeName == parentName {
			return true
		}
	}
	return false
}

// InheritsDirectly reports whether parentName is the direct supertype.
func (e *Entity) InheritsDirectly(parentName string) bool {
	return e.SupertypeName == parentName
}

// Subtypes returns the entities inheriting from this one, ascendingly
// sorted by name. With deep set, transitive subtypes are included.
func (e *Entity) Subtypes(deep bool) []*Entity {
	var subs []*Entity
	for _, name := range e.schema.EntityNames() {
		cur := e.schema.Entity(name)
		if deep && cur.Inherits(e.Name) {
			subs = append(subs, cur)
		} else if !deep && cur.InheritsDirectly(e.Name) {
			subs = append(subs, cur)
		}
	}
	return subs
}

// SubtypeNames returns the names of Subtypes.
func (e *Entity) SubtypeNames(deep bool) []string {
	subs := e.Subtypes(deep)
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.Name
	}
	return names
}

// resolve fills the flattened attribute and inverse lists. Called once per
// entity after the whole schema is parsed.
func (e *Entity) resolve() {
	var chain []*Entity
	for cur := e; cur != nil; cur = cur.Supertype() {
		chain = append(chain, cur)
	}
	// supertype declarations come first
	for i := len(chain) - 1; i >= 0; i-- {
		e.all = append(e.all, chain[i].attrs...)
		e.allInv = append(e.allInv, chain[i].inverses...)
	}
	e.allIndex = make(map[string]int, len(e.all))
	for i, a := range e.all {
		e.allIndex[a.Name] = i
	}
}

// entity declaration body keywords that terminate the attribute listing
var entityBodyKeywords = []string{
	"WHERE", "INVERSE", "WR2", "WR3", "WR4", "WR5", "UNIQUE", "DERIVE",
}

var (
	supertypeRe  = regexp.MustCompile(`SUBTYPE OF \((.*?)\);`)
	entityAttrRe = regexp.MustCompile(`(?s)(.*?) : (.*?);`)
)

// cutAtKeywords truncates s at the earliest body keyword occurrence.
func cutAtKeywords(s string, keywords []string) string {
	cut := len(s)
	for _, kw := range keywords {
		if i := strings.Index(s, "\n "+kw); i >= 0 && i < cut {
			cut = i
		}
	}
	return s[:cut]
}

func newEntity(name, rawData string, schema *Schema) *Entity {
	e := &Entity{
		Name:      name,
		schema:    schema,
		rawData:   rawData,
		attrIndex: make(map[string]*Attribute),
		invIndex:  make(map[string]*Inverse),
	}

	if m := supertypeRe.FindStringSubmatch(rawData); m != nil {
		e.SupertypeName = m[1]
	}

	// the body starts after the declaration header's terminating ';'
	body := ""
	if i := strings.Index(rawData, ";"); i >= 0 {
		body = rawData[i+1:]
	}

	attrsSection := cutAtKeywords(body, entityBodyKeywords)
	for _, m := range entityAttrRe.FindAllStringSubmatch(attrsSection, -1) {
		attrName := strings.ReplaceAll(m[1], "\n\t", "")
		attrType := strings.ReplaceAll(m[2], "\n\t", "")
		a := newAttribute(attrName, attrType, e)
		e.attrs = append(e.attrs, a)
		e.attrIndex[a.Name] = a
	}

	if _, after, found := strings.Cut(body, "\n INVERSE"); found {
		invSection := cutAtKeywords(after, entityBodyKeywords)
		for _, m := range entityAttrRe.FindAllStringSubmatch(invSection, -1) {
			invName := strings.ReplaceAll(m[1], "\n\t", "")
			invType := strings.ReplaceAll(m[2], "\n\t", "")
			inv := newInverse(invName, invType, e)
			e.inverses = append(e.inverses, inv)
			e.invIndex[inv.Name] = inv
		}
	}

	return e
}
