// Package schema parses EXPRESS schema definitions (ISO 10303-11) into a
// queryable model of the IFC type system: defined types, select types,
// enumerations and entities with their attributes, inheritance links and
// INVERSE clauses.
//
// Two schema versions ship embedded and load by name:
//
//	s, err := schema.Load("IFC2X3")
//
// Arbitrary .exp files load with LoadFile, or from memory with Parse. The
// parser keeps only what instance data binding needs; WHERE rules, DERIVE
// clauses and uniqueness constraints are read over.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

//go:embed specs/*.exp
var specsFS embed.FS

var specFiles = map[string]string{
	"IFC2X3": "specs/IFC2X3.exp",
	"IFC4":   "specs/IFC4.exp",
}

// ErrUnknownSchema is returned by Load for a name outside Names.
var ErrUnknownSchema = errors.New("unknown schema")

// Names returns the embedded schema names, ascendingly sorted.
func Names() []string {
	names := make([]string, 0, len(specFiles))
	for name := range specFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema is a parsed EXPRESS schema.
type Schema struct {
	// Version is the declared schema identifier, e.g. "IFC2X3".
	Version string

	definedTypes map[string]*DefinedType
	selectTypes  map[string]*SelectType
	enums        map[string]*Enumeration
	entities     map[string]*Entity
	canonical    map[string]string // upper-cased name to declared name
}

var (
	versionRe = regexp.MustCompile(`SCHEMA (.*);`)
	typeRe    = regexp.MustCompile(`(?m)^TYPE (\w+) = (.+);$`)
	selectRe  = regexp.MustCompile(`TYPE (\w+) = SELECT\n\t\((.*(?:\n\t,.*)*)\);`)
	enumRe    = regexp.MustCompile(`TYPE (\w+) = ENUMERATION OF\n\t\((.*(?:\n\t,.*)*)\);`)
	entityRe  = regexp.MustCompile(`(?s)ENTITY (.*?)END_ENTITY;`)
)

// Parse builds a Schema from EXPRESS source.
func Parse(src []byte) (*Schema, error) {
	text := string(src)

	m := versionRe.FindStringSubmatch(text)
	if m == nil {
		return nil, errors.New("schema: missing SCHEMA declaration")
	}

	s := &Schema{
		Version:      m[1],
		definedTypes: make(map[string]*DefinedType),
		selectTypes:  make(map[string]*SelectType),
		enums:        make(map[string]*Enumeration),
		entities:     make(map[string]*Entity),
		canonical:    make(map[string]string),
	}

	for _, m := range typeRe.FindAllStringSubmatch(text, -1) {
		s.definedTypes[m[1]] = &DefinedType{Name: m[1], schema: s, rawValue: m[2]}
	}
	for _, m := range selectRe.FindAllStringSubmatch(text, -1) {
		s.selectTypes[m[1]] = &SelectType{Name: m[1], schema: s, rawTypes: m[2]}
	}
	for _, m := range enumRe.FindAllStringSubmatch(text, -1) {
		s.enums[m[1]] = &Enumeration{Name: m[1], schema: s, rawValues: m[2]}
	}
	for _, m := range entityRe.FindAllStringSubmatch(text, -1) {
		raw := m[1]
		name := raw
		if i := strings.IndexAny(raw, " ;\n"); i >= 0 {
			name = raw[:i]
		}
		s.entities[name] = newEntity(name, raw, s)
	}

	for _, e := range s.entities {
		seen := map[string]bool{e.Name: true}
		for cur := e; cur.SupertypeName != ""; {
			sup := s.entities[cur.SupertypeName]
			if sup == nil {
				return nil, fmt.Errorf("schema: entity %s: unknown supertype %s",
					cur.Name, cur.SupertypeName)
			}
			if seen[sup.Name] {
				return nil, fmt.Errorf("schema: entity %s: supertype cycle through %s",
					e.Name, sup.Name)
			}
			seen[sup.Name] = true
			cur = sup
		}
	}
	for _, e := range s.entities {
		e.resolve()
	}

	for name := range s.definedTypes {
		s.canonical[strings.ToUpper(name)] = name
	}
	for name := range s.selectTypes {
		s.canonical[strings.ToUpper(name)] = name
	}
	for name := range s.enums {
		s.canonical[strings.ToUpper(name)] = name
	}
	for name := range s.entities {
		s.canonical[strings.ToUpper(name)] = name
	}

	return s, nil
}

// Load parses one of the embedded schemas by name.
func Load(name string) (*Schema, error) {
	path, ok := specFiles[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	src, err := specsFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: reading %s: %w", path, err)
	}
	return Parse(src)
}

// LoadFile parses an EXPRESS schema from the filesystem.
func LoadFile(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return Parse(src)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefinedTypeNames returns all defined type names, ascendingly sorted.
func (s *Schema) DefinedTypeNames() []string { return sortedKeys(s.definedTypes) }

// SelectTypeNames returns all select type names, ascendingly sorted.
func (s *Schema) SelectTypeNames() []string { return sortedKeys(s.selectTypes) }

// EnumerationNames returns all enumeration names, ascendingly sorted.
func (s *Schema) EnumerationNames() []string { return sortedKeys(s.enums) }

// EntityNames returns all entity names, ascendingly sorted.
func (s *Schema) EntityNames() []string { return sortedKeys(s.entities) }

// DefinedType returns a defined type by name, or nil.
func (s *Schema) DefinedType(name string) *DefinedType { return s.definedTypes[name] }

// SelectType returns a select type by name, or nil.
func (s *Schema) SelectType(name string) *SelectType { return s.selectTypes[name] }

// Enumeration returns an enumeration by name, or nil.
func (s *Schema) Enumeration(name string) *Enumeration { return s.enums[name] }

// Entity returns an entity by name, or nil.
func (s *Schema) Entity(name string) *Entity { return s.entities[name] }

// Element returns any declaration by name, or nil. Entities are tried
// first, then defined types, select types and enumerations.
func (s *Schema) Element(name string) Element {
	if e := s.entities[name]; e != nil {
		return e
	}
	if t := s.definedTypes[name]; t != nil {
		return t
	}
	if t := s.selectTypes[name]; t != nil {
		return t
	}
	if t := s.enums[name]; t != nil {
		return t
	}
	return nil
}

// CanonicalName maps a case-insensitive spelling (STEP files upper-case
// type names) to the declared schema spelling. Unknown names come back
// unchanged.
func (s *Schema) CanonicalName(name string) string {
	if declared, ok := s.canonical[strings.ToUpper(name)]; ok {
		return declared
	}
	return name
}

// EntityInherits reports whether entity name inherits from parentName
// anywhere up its chain. Unknown entity names report false.
func (s *Schema) EntityInherits(name, parentName string) bool {
	e := s.entities[name]
	return e != nil && e.Inherits(parentName)
}
