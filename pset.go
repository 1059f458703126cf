package ifcreader

// PropertySet groups the properties attached to an object. Two shapes
// exist in the data: an IfcPropertySet lists property instances through
// HasProperties, while the specialized set definitions carried by type
// objects (door lining, door panel...) hold their values directly as
// entity attributes.
type PropertySet struct {
	Entity

	fromType    bool
	props       []*Property
	propsLoaded bool
}

// DefinedByType reports whether the set was reached through the object's
// type object rather than a direct relation.
func (p *PropertySet) DefinedByType() bool { return p.fromType }

// Properties returns the properties of the set. For an IfcPropertySet,
// property kinds outside IfcSimpleProperty are skipped with a warning.
func (p *PropertySet) Properties() []*Property {
	if !p.propsLoaded {
		p.props = p.loadProperties()
		p.propsLoaded = true
	}
	return p.props
}

func (p *PropertySet) loadProperties() []*Property {
	if p.IsA("IfcPropertySet") {
		var props []*Property
		for _, inst := range p.attrInstances("HasProperties") {
			e := p.reader.newEntity(inst)
			if !e.IsA("IfcSimpleProperty") {
				p.reader.log.Warn("skipping unsupported property",
					"type", e.TypeName(), "id", e.ID())
				continue
			}
			props = append(props, &Property{Entity: e, set: p})
		}
		return props
	}
	// a specialized set definition exposes its declared attributes
	if p.def == nil {
		return nil
	}
	props := make([]*Property, 0, len(p.def.Attributes()))
	for _, attr := range p.def.Attributes() {
		props = append(props, &Property{Entity: p.Entity, set: p, attr: attr})
	}
	return props
}

// PropertyCodenames returns the codename of every property of the set,
// in declaration order.
func (p *PropertySet) PropertyCodenames() []string {
	props := p.Properties()
	names := make([]string, len(props))
	for i, prop := range props {
		names[i] = prop.Codename()
	}
	return names
}

// Property returns the property of the set matching a codename, or nil.
func (p *PropertySet) Property(codename string) *Property {
	for _, prop := range p.Properties() {
		if prop.Codename() == codename {
			return prop
		}
	}
	return nil
}

// PropertyValue returns the value and unit of the property matching a
// codename. Both come back nil when no property matches.
func (p *PropertySet) PropertyValue(codename string) (any, any) {
	if prop := p.Property(codename); prop != nil {
		return prop.Value(), prop.Unit()
	}
	return nil, nil
}
