package ifcreader

import "strings"

// Quantity is one physical quantity of an element quantity set.
type Quantity struct {
	Entity
}

// Value returns the quantity value. The value attribute is named after
// the type: IfcQuantityArea carries AreaValue.
func (q *Quantity) Value() any {
	attr := strings.TrimPrefix(q.TypeName(), "IfcQuantity") + "Value"
	return q.Attr(attr)
}

// Unit returns the unit attached to the quantity, or nil.
func (q *Quantity) Unit() any {
	return q.Attr("Unit")
}
