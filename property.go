package ifcreader

import (
	"github.com/nobatek/ifcreader/schema"
	"github.com/nobatek/ifcreader/step"
)

// Property is one named value within a property set. It wraps either an
// IfcSimpleProperty instance (a single value carries its NominalValue,
// other kinds report nil) or one declared attribute of a specialized set
// definition.
type Property struct {
	Entity

	set  *PropertySet
	attr *schema.Attribute // set for definition-backed properties
}

// Set returns the property set the property belongs to.
func (p *Property) Set() *PropertySet { return p.set }

func (p *Property) Name() string {
	if p.attr != nil {
		return p.attr.Name
	}
	return p.Entity.Name()
}

func (p *Property) Codename() string { return Codename(p.Name()) }

func (p *Property) Description() string {
	if p.attr != nil {
		return ""
	}
	return p.Entity.Description()
}

// Value returns the property value as a plain Go value, or nil when
// unset.
func (p *Property) Value() any {
	if p.attr != nil {
		return p.Attr(p.attr.Name)
	}
	return p.Attr("NominalValue")
}

// Unit returns the unit attached to the value, or nil. Most models leave
// it unset and rely on the project units.
func (p *Property) Unit() any {
	if p.attr != nil {
		return nil
	}
	return p.Attr("Unit")
}

// ValueTypeName returns the declared type of the value, e.g.
// "IfcLengthMeasure", or "" when the value carries no type.
func (p *Property) ValueTypeName() string {
	if p.attr != nil {
		return p.attr.TypeName
	}
	if v := p.rawAttr("NominalValue"); v.Kind == step.KindTyped {
		return p.reader.schema.CanonicalName(v.TypeName)
	}
	return ""
}

// Equal reports whether both properties designate the same value: same
// name within the same set. Property instances carry no GlobalId.
func (p *Property) Equal(other *Property) bool {
	if other == nil {
		return false
	}
	return p.Name() == other.Name() && p.set.Entity.Equal(&other.set.Entity)
}

func (p *Property) String() string {
	return p.Name()
}
