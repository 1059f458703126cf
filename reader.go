package ifcreader

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nobatek/ifcreader/schema"
	"github.com/nobatek/ifcreader/step"
)

var (
	// ErrNoProject is returned by Open when the file does not define
	// exactly one IfcProject.
	ErrNoProject = errors.New("no unique IfcProject")

	// ErrUnknownEntityType is returned by ReadEntities for a type name
	// the schema does not declare.
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// Options configures Open.
type Options struct {
	// SchemaFile points at an EXPRESS schema to use instead of the
	// embedded one matching the file's FILE_SCHEMA declaration.
	SchemaFile string

	// Logger receives warnings about data the reader skips over.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// ReadOptions filters the result of a read.
type ReadOptions struct {
	// Parent keeps only the entities whose Parent resolves to this one.
	Parent *ObjectEntity

	// IncludeDivided also returns spatial structure elements whose
	// CompositionType is not ELEMENT, i.e. complex structures and their
	// parts. The zero value keeps undivided elements only.
	IncludeDivided bool
}

// Reader gives access to the entities of one IFC file. It is read-only
// after Open.
type Reader struct {
	file     *step.File
	schema   *schema.Schema
	filename string
	log      *slog.Logger
	project  *ObjectEntity
}

// Open reads an IFC file with default options.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions reads an IFC file, loads the schema it declares and
// checks that it defines a unique IfcProject.
func OpenWithOptions(path string, opts Options) (*Reader, error) {
	file, err := step.DecodeFile(path)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var sch *schema.Schema
	if opts.SchemaFile != "" {
		sch, err = schema.LoadFile(opts.SchemaFile)
	} else {
		sch, err = schema.Load(file.SchemaIdentifier())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r := &Reader{file: file, schema: sch, filename: path, log: log}

	projects, err := r.ReadEntities("IfcProject")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(projects) != 1 {
		return nil, fmt.Errorf("%s: %w: %d found", path, ErrNoProject, len(projects))
	}
	r.project = projects[0]

	log.Debug("ifc file loaded",
		"file", path, "schema", sch.Version, "instances", file.InstanceCount())
	return r, nil
}

// Filename returns the path the Reader was opened from.
func (r *Reader) Filename() string { return r.filename }

// SchemaVersion returns the schema identifier the file declares.
func (r *Reader) SchemaVersion() string { return r.schema.Version }

// Schema returns the loaded schema.
func (r *Reader) Schema() *schema.Schema { return r.schema }

// File returns the decoded exchange file.
func (r *Reader) File() *step.File { return r.file }

// Project returns the unique IfcProject of the model.
func (r *Reader) Project() *ObjectEntity { return r.project }

// Wrap binds a raw data instance to the schema as an ObjectEntity. It is
// the way back into the entity API from the instances File hands out.
// Returns nil for nil.
func (r *Reader) Wrap(inst *step.Instance) *ObjectEntity {
	return r.wrapObject(inst)
}

// ReadEntities returns every entity of the given type, subtypes included,
// ascendingly sorted by identifier.
func (r *Reader) ReadEntities(typeName string) ([]*ObjectEntity, error) {
	return r.ReadEntitiesWithOptions(typeName, ReadOptions{IncludeDivided: true})
}

// ReadEntitiesWithOptions returns the entities of the given type, subtypes
// included, matching the read options.
func (r *Reader) ReadEntitiesWithOptions(typeName string, opts ReadOptions) ([]*ObjectEntity, error) {
	def := r.schema.Entity(r.schema.CanonicalName(typeName))
	if def == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, typeName)
	}
	var out []*ObjectEntity
	for _, inst := range r.instancesOf(def) {
		e := r.wrapObject(inst)
		if !opts.IncludeDivided && e.IsA("IfcSpatialStructureElement") && !e.IsElement() {
			continue
		}
		out = append(out, e)
	}
	return filterByParent(out, opts.Parent), nil
}

// ReadSites returns the sites of the model. Without IncludeDivided, a
// partial site reports the undivided site it decomposes instead of
// itself; each site appears once.
func (r *Reader) ReadSites(opts ReadOptions) []*ObjectEntity {
	if opts.IncludeDivided {
		return r.read("IfcSite", opts)
	}
	var out []*ObjectEntity
	seen := make(map[string]bool)
	add := func(site *ObjectEntity) {
		if gid := site.GlobalID(); !seen[gid] {
			seen[gid] = true
			out = append(out, site)
		}
	}
	for _, site := range r.read("IfcSite", ReadOptions{IncludeDivided: true}) {
		if site.IsElement() {
			add(site)
			continue
		}
		parent := site.Parent()
		if parent != nil && parent.IsA("IfcSite") && parent.IsElement() {
			add(parent)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].raw.ID < out[j].raw.ID })
	return filterByParent(out, opts.Parent)
}

// ReadBuildings returns the buildings of the model.
func (r *Reader) ReadBuildings(opts ReadOptions) []*ObjectEntity {
	return r.read("IfcBuilding", opts)
}

// ReadBuildingStoreys returns the building storeys of the model.
func (r *Reader) ReadBuildingStoreys(opts ReadOptions) []*ObjectEntity {
	return r.read("IfcBuildingStorey", opts)
}

// ReadSpaces returns the spaces of the model.
func (r *Reader) ReadSpaces(opts ReadOptions) []*ObjectEntity {
	return r.read("IfcSpace", opts)
}

// ReadZones returns the zones of the model.
func (r *Reader) ReadZones() []*ObjectEntity {
	return r.read("IfcZone", ReadOptions{IncludeDivided: true})
}

// ReadWalls returns the walls of the model, standard-case walls included.
func (r *Reader) ReadWalls() []*ObjectEntity {
	return r.read("IfcWall", ReadOptions{IncludeDivided: true})
}

// ReadWindows returns the windows of the model.
func (r *Reader) ReadWindows() []*ObjectEntity {
	return r.read("IfcWindow", ReadOptions{IncludeDivided: true})
}

// ReadDoors returns the doors of the model.
func (r *Reader) ReadDoors() []*ObjectEntity {
	return r.read("IfcDoor", ReadOptions{IncludeDivided: true})
}

// ReadSlabs returns the slabs of the model.
func (r *Reader) ReadSlabs() []*ObjectEntity {
	return r.read("IfcSlab", ReadOptions{IncludeDivided: true})
}

// read serves the fixed-type readers, whose type names are always
// declared.
func (r *Reader) read(typeName string, opts ReadOptions) []*ObjectEntity {
	out, _ := r.ReadEntitiesWithOptions(typeName, opts)
	return out
}

// instancesOf collects the instances of an entity type and its subtypes,
// ascendingly sorted by identifier.
func (r *Reader) instancesOf(def *schema.Entity) []*step.Instance {
	insts := append([]*step.Instance(nil), r.file.InstancesOfType(def.Name)...)
	for _, sub := range def.SubtypeNames(true) {
		insts = append(insts, r.file.InstancesOfType(sub)...)
	}
	sort.Slice(insts, func(i, j int) bool { return insts[i].ID < insts[j].ID })
	return insts
}

func filterByParent(entities []*ObjectEntity, parent *ObjectEntity) []*ObjectEntity {
	if parent == nil {
		return entities
	}
	var out []*ObjectEntity
	for _, e := range entities {
		if p := e.Parent(); p != nil && p.Equal(&parent.Entity) {
			out = append(out, e)
		}
	}
	return out
}

func (r *Reader) newEntity(inst *step.Instance) Entity {
	return Entity{
		reader: r,
		raw:    inst,
		def:    r.schema.Entity(r.schema.CanonicalName(inst.Type)),
	}
}

func (r *Reader) wrapObject(inst *step.Instance) *ObjectEntity {
	if inst == nil {
		return nil
	}
	return &ObjectEntity{Entity: r.newEntity(inst)}
}

// plainValue converts a decoded argument to a plain Go value. Enumeration
// literals T, F and U map to true, false and nil; references resolve to
// their instance; typed values unwrap.
func (r *Reader) plainValue(v step.Value) any {
	switch v.Kind {
	case step.KindInt:
		return v.Int
	case step.KindReal:
		return v.Real
	case step.KindString:
		return v.Str
	case step.KindEnum:
		switch v.Str {
		case "T":
			return true
		case "F":
			return false
		case "U":
			return nil
		}
		return v.Str
	case step.KindRef:
		return r.file.Instance(v.Ref)
	case step.KindTyped:
		if v.Inner != nil {
			return r.plainValue(*v.Inner)
		}
		return nil
	case step.KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = r.plainValue(item)
		}
		return out
	}
	return nil
}
