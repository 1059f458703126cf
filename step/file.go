package step

import (
	"sort"
	"strings"
)

// Header carries the HEADER section records of an exchange file.
type Header struct {
	// FILE_DESCRIPTION
	Description         []string
	ImplementationLevel string

	// FILE_NAME
	Name                 string
	Timestamp            string
	Author               []string
	Organization         []string
	PreprocessorVersion  string
	OriginatingSystem    string
	Authorization        string

	// FILE_SCHEMA
	Schema []string
}

func (h *Header) apply(record string, args []Value) {
	get := func(i int) Value {
		if i < len(args) {
			return args[i]
		}
		return Value{Kind: KindNull}
	}
	switch record {
	case "FILE_DESCRIPTION":
		h.Description = stringList(get(0))
		h.ImplementationLevel = get(1).Str
	case "FILE_NAME":
		h.Name = get(0).Str
		h.Timestamp = get(1).Str
		h.Author = stringList(get(2))
		h.Organization = stringList(get(3))
		h.PreprocessorVersion = get(4).Str
		h.OriginatingSystem = get(5).Str
		h.Authorization = get(6).Str
	case "FILE_SCHEMA":
		h.Schema = stringList(get(0))
	}
}

func stringList(v Value) []string {
	if v.Kind != KindList {
		return nil
	}
	out := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if item.Kind == KindString {
			out = append(out, item.Str)
		}
	}
	return out
}

// Instance is one numbered record of the data section. Args are positional;
// binding them to attribute names requires the schema the file declares.
type Instance struct {
	ID   int64
	Type string // upper-case, as written in the file
	Args []Value
}

// Arg returns the argument at the given position, or a null value when the
// position is out of range.
func (inst *Instance) Arg(i int) Value {
	if i < 0 || i >= len(inst.Args) {
		return Value{Kind: KindNull}
	}
	return inst.Args[i]
}

// Ref records that Source references some instance at argument position Arg.
// Nested positions (inside aggregates) report the top-level argument index.
type Ref struct {
	Source *Instance
	Arg    int
}

// File is the decoded model. It is read-only after Decode returns and safe
// for concurrent reads from any number of goroutines.
type File struct {
	Header Header

	instances map[int64]*Instance
	ids       []int64 // sorted

	// Lookup indices (built on decode)
	byType map[string][]*Instance // upper-case type name -> instances, id order
	refs   map[int64][]Ref        // target id -> referencing instances
}

// SchemaIdentifier returns the first FILE_SCHEMA identifier, or "" when the
// header carries none.
func (f *File) SchemaIdentifier() string {
	if len(f.Header.Schema) > 0 {
		return f.Header.Schema[0]
	}
	return ""
}

// Instance returns the instance with the given id, or nil.
func (f *File) Instance(id int64) *Instance {
	return f.instances[id]
}

// InstanceCount returns the number of instances in the data section.
func (f *File) InstanceCount() int {
	return len(f.instances)
}

// Instances returns all instances in ascending id order.
func (f *File) Instances() []*Instance {
	out := make([]*Instance, len(f.ids))
	for i, id := range f.ids {
		out[i] = f.instances[id]
	}
	return out
}

// InstancesOfType returns the instances whose type name matches exactly
// (case-insensitive). Subtype expansion is a schema concern and happens a
// layer above.
func (f *File) InstancesOfType(name string) []*Instance {
	return f.byType[strings.ToUpper(name)]
}

// TypeNames returns the distinct type names present in the file, ascendingly
// sorted.
func (f *File) TypeNames() []string {
	names := make([]string, 0, len(f.byType))
	for name := range f.byType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReferencedBy returns the instances that reference the given id, with the
// top-level argument position of each reference. The same source instance
// appears once per referencing argument.
func (f *File) ReferencedBy(id int64) []Ref {
	return f.refs[id]
}

func (f *File) buildIndices() {
	f.ids = make([]int64, 0, len(f.instances))
	for id := range f.instances {
		f.ids = append(f.ids, id)
	}
	sort.Slice(f.ids, func(i, j int) bool { return f.ids[i] < f.ids[j] })

	f.byType = make(map[string][]*Instance)
	f.refs = make(map[int64][]Ref)

	var scratch []int64
	for _, id := range f.ids {
		inst := f.instances[id]
		key := strings.ToUpper(inst.Type)
		f.byType[key] = append(f.byType[key], inst)

		for argIdx, arg := range inst.Args {
			scratch = arg.Refs(scratch[:0])
			seen := make(map[int64]bool, len(scratch))
			for _, target := range scratch {
				if seen[target] {
					continue
				}
				seen[target] = true
				f.refs[target] = append(f.refs[target], Ref{Source: inst, Arg: argIdx})
			}
		}
	}
}
