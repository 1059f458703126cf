package step

import (
	"strconv"
	"strings"
)

// Kind identifies the representation of one decoded argument slot.
type Kind uint8

const (
	KindNull    Kind = 0 // unset attribute ($)
	KindDerived Kind = 1 // attribute derived from a subtype (*)
	KindInt     Kind = 2 // integer literal
	KindReal    Kind = 3 // real literal
	KindString  Kind = 4 // quoted string
	KindEnum    Kind = 5 // enumeration literal (.ELEMENT.)
	KindRef     Kind = 6 // entity instance reference (#42)
	KindTyped   Kind = 7 // typed value (IFCLENGTHMEASURE(2110.))
	KindList    Kind = 8 // aggregate ((...))
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindDerived:
		return "derived"
	case KindInt:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindRef:
		return "reference"
	case KindTyped:
		return "typed"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one argument of a decoded instance. Exactly one of the payload
// fields is meaningful, selected by Kind.
type Value struct {
	Kind     Kind
	Int      int64   // KindInt
	Real     float64 // KindReal
	Str      string  // KindString, KindEnum (without the surrounding dots)
	Ref      int64   // KindRef
	TypeName string  // KindTyped, upper-case as written in the file
	Inner    *Value  // KindTyped
	List     []Value // KindList
}

// IsNull reports whether the value is the unset marker ($).
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String renders the value back in STEP notation. Useful for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "$"
	case KindDerived:
		return "*"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case KindString:
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'"
	case KindEnum:
		return "." + v.Str + "."
	case KindRef:
		return "#" + strconv.FormatInt(v.Ref, 10)
	case KindTyped:
		inner := "$"
		if v.Inner != nil {
			inner = v.Inner.String()
		}
		return v.TypeName + "(" + inner + ")"
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "?"
	}
}

// Refs appends every instance reference reachable from the value, including
// references nested in aggregates and typed values.
func (v Value) Refs(dst []int64) []int64 {
	switch v.Kind {
	case KindRef:
		dst = append(dst, v.Ref)
	case KindTyped:
		if v.Inner != nil {
			dst = v.Inner.Refs(dst)
		}
	case KindList:
		for _, item := range v.List {
			dst = item.Refs(dst)
		}
	}
	return dst
}
