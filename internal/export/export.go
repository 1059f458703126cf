// Package export renders the content of an IFC model as text, JSON or
// YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nobatek/ifcreader"
	"github.com/nobatek/ifcreader/step"
)

// Options selects what each node carries.
type Options struct {
	PropertySets bool
	Quantities   bool
}

// Document is the renderable form of a whole model.
type Document struct {
	File    string `json:"file" yaml:"file"`
	Schema  string `json:"schema" yaml:"schema"`
	Project Node   `json:"project" yaml:"project"`
}

// Node is the renderable form of one entity.
type Node struct {
	Type         string        `json:"type" yaml:"type"`
	GlobalID     string        `json:"global_id,omitempty" yaml:"global_id,omitempty"`
	Name         string        `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	PropertySets []PropertySet `json:"property_sets,omitempty" yaml:"property_sets,omitempty"`
	Quantities   []NamedValue  `json:"quantities,omitempty" yaml:"quantities,omitempty"`
	Elements     []Node        `json:"elements,omitempty" yaml:"elements,omitempty"`
	Kids         []Node        `json:"kids,omitempty" yaml:"kids,omitempty"`
}

// PropertySet is the renderable form of one property set.
type PropertySet struct {
	Name       string       `json:"name" yaml:"name"`
	Properties []NamedValue `json:"properties" yaml:"properties"`
}

// NamedValue is one property or quantity.
type NamedValue struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// BuildDocument walks the model from its project down the spatial
// structure, attaching each element to the structure containing it.
func BuildDocument(r *ifcreader.Reader, opts Options) *Document {
	return &Document{
		File:    r.Filename(),
		Schema:  r.SchemaVersion(),
		Project: buildNode(r.Project(), elementIndex(r), opts),
	}
}

// BuildEntityNodes renders the entities of one type as a flat list.
func BuildEntityNodes(r *ifcreader.Reader, typeName string, opts Options) ([]Node, error) {
	entities, err := r.ReadEntities(typeName)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(entities))
	for _, e := range entities {
		nodes = append(nodes, buildNode(e, nil, opts))
	}
	return nodes, nil
}

// elementIndex groups the elements of the model by the GlobalId of their
// parent.
func elementIndex(r *ifcreader.Reader) map[string][]*ifcreader.ObjectEntity {
	idx := make(map[string][]*ifcreader.ObjectEntity)
	elements, err := r.ReadEntities("IfcElement")
	if err != nil {
		return idx
	}
	for _, e := range elements {
		if p := e.Parent(); p != nil {
			idx[p.GlobalID()] = append(idx[p.GlobalID()], e)
		}
	}
	return idx
}

// buildNode renders one entity. With a non-nil element index it recurses
// into contained elements and decomposition kids.
func buildNode(e *ifcreader.ObjectEntity, elements map[string][]*ifcreader.ObjectEntity, opts Options) Node {
	n := Node{
		Type:        e.TypeName(),
		GlobalID:    e.GlobalID(),
		Name:        e.Name(),
		Description: e.Description(),
	}
	if opts.PropertySets {
		for _, pset := range e.PropertySets() {
			ps := PropertySet{Name: pset.Name()}
			for _, prop := range pset.Properties() {
				ps.Properties = append(ps.Properties, NamedValue{
					Name:  prop.Name(),
					Value: plain(prop.Value()),
				})
			}
			n.PropertySets = append(n.PropertySets, ps)
		}
	}
	if opts.Quantities {
		for _, q := range e.Quantities() {
			n.Quantities = append(n.Quantities, NamedValue{
				Name:  q.Name(),
				Value: plain(q.Value()),
			})
		}
	}
	if elements == nil {
		return n
	}
	for _, el := range elements[e.GlobalID()] {
		n.Elements = append(n.Elements, buildNode(el, elements, opts))
	}
	for _, kid := range e.Kids() {
		n.Kids = append(n.Kids, buildNode(kid, elements, opts))
	}
	return n
}

// plain rewrites values the codecs cannot render: instance references
// become "#id" strings.
func plain(v any) any {
	switch val := v.(type) {
	case *step.Instance:
		return fmt.Sprintf("#%d", val.ID)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

// Encode renders a Document or a node list in the named format: "text",
// "json" or "yaml".
func Encode(w io.Writer, doc any, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return encodeText(w, doc)
	}
	return fmt.Errorf("unknown format %q", format)
}

func encodeText(w io.Writer, doc any) error {
	switch d := doc.(type) {
	case *Document:
		if _, err := fmt.Fprintf(w, "%s (%s)\n", d.File, d.Schema); err != nil {
			return err
		}
		return writeNode(w, d.Project, 0)
	case []Node:
		for _, n := range d {
			if err := writeNode(w, n, 0); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("cannot render %T as text", doc)
}

func writeNode(w io.Writer, n Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	label := n.Type
	if n.Name != "" {
		label = fmt.Sprintf("%s %q", n.Type, n.Name)
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", indent, label); err != nil {
		return err
	}
	for _, ps := range n.PropertySets {
		if _, err := fmt.Fprintf(w, "%s  [%s]\n", indent, ps.Name); err != nil {
			return err
		}
		for _, p := range ps.Properties {
			if _, err := fmt.Fprintf(w, "%s    %s = %v\n", indent, p.Name, p.Value); err != nil {
				return err
			}
		}
	}
	for _, q := range n.Quantities {
		if _, err := fmt.Fprintf(w, "%s  %s = %v\n", indent, q.Name, q.Value); err != nil {
			return err
		}
	}
	for _, el := range n.Elements {
		if err := writeNode(w, el, depth+1); err != nil {
			return err
		}
	}
	for _, kid := range n.Kids {
		if err := writeNode(w, kid, depth+1); err != nil {
			return err
		}
	}
	return nil
}
