// Package airport holds the static airport reference data and the lookups built on it:
// the Registry, the display-name Resolver and the published airport catalog.
package airport

import (
	_ "embed"
	"fmt"
	"sort"

	"flight-timetable/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultTable []byte

// NameEntry is one row of the ordered name table used by the Resolver.
type NameEntry struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// table is the on-disk layout of registry.yaml.
type table struct {
	Airports []entity.AirportRef `yaml:"airports"`
	Aliases  []NameEntry         `yaml:"aliases"`
	Regions  []string            `yaml:"regions"`
}

// Registry is the immutable airport reference table.
// It is built once at startup and shared read-only by every pipeline stage.
type Registry struct {
	refs    []entity.AirportRef
	byCode  map[string]int
	byID    map[int]int
	names   []NameEntry
	nameIdx map[string]int
	regions []string
}

// Default builds the Registry from the embedded reference table.
func Default() (*Registry, error) {
	return Load(defaultTable)
}

// Load parses a YAML reference table and validates it.
//
// The name table is seeded with every airport's short name in table order, followed by
// the curated aliases. An alias whose name is already present keeps the earlier position
// and takes the alias's code.
func Load(data []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: parse table: %v", entity.ErrInvalidRegistry, err)
	}
	if len(t.Airports) == 0 {
		return nil, fmt.Errorf("%w: no airports", entity.ErrInvalidRegistry)
	}

	r := &Registry{
		refs:    make([]entity.AirportRef, 0, len(t.Airports)),
		byCode:  make(map[string]int, len(t.Airports)),
		byID:    make(map[int]int, len(t.Airports)),
		nameIdx: make(map[string]int, len(t.Airports)+len(t.Aliases)),
		regions: append([]string(nil), t.Regions...),
	}

	for _, ref := range t.Airports {
		if err := ref.Validate(); err != nil {
			return nil, fmt.Errorf("%w: airport %d: %v", entity.ErrInvalidRegistry, ref.ID, err)
		}
		if _, dup := r.byCode[ref.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %s", entity.ErrInvalidRegistry, ref.Code)
		}
		if _, dup := r.byID[ref.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", entity.ErrInvalidRegistry, ref.ID)
		}
		r.byCode[ref.Code] = len(r.refs)
		r.byID[ref.ID] = len(r.refs)
		r.refs = append(r.refs, ref)
		r.putName(ref.ShortName, ref.Code)
	}

	for _, alias := range t.Aliases {
		if alias.Name == "" {
			return nil, fmt.Errorf("%w: alias for %s has empty name", entity.ErrInvalidRegistry, alias.Code)
		}
		if _, ok := r.byCode[alias.Code]; !ok {
			return nil, fmt.Errorf("%w: alias %q points to %w %s",
				entity.ErrInvalidRegistry, alias.Name, entity.ErrUnknownAirport, alias.Code)
		}
		r.putName(alias.Name, alias.Code)
	}

	return r, nil
}

func (r *Registry) putName(name, code string) {
	if i, ok := r.nameIdx[name]; ok {
		r.names[i].Code = code
		return
	}
	r.nameIdx[name] = len(r.names)
	r.names = append(r.names, NameEntry{Name: name, Code: code})
}

// LookupByFullName returns the code registered under an exact display name.
// Both canonical short names and curated aliases are searched.
func (r *Registry) LookupByFullName(name string) (string, bool) {
	i, ok := r.nameIdx[name]
	if !ok {
		return "", false
	}
	return r.names[i].Code, true
}

// LookupByCode returns the reference row for a canonical code.
func (r *Registry) LookupByCode(code string) (entity.AirportRef, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return entity.AirportRef{}, false
	}
	return r.refs[i], true
}

// LookupByID returns the reference row for a timetable source id.
func (r *Registry) LookupByID(id int) (entity.AirportRef, bool) {
	i, ok := r.byID[id]
	if !ok {
		return entity.AirportRef{}, false
	}
	return r.refs[i], true
}

// AllRefs returns every reference row in table order.
func (r *Registry) AllRefs() []entity.AirportRef {
	return append([]entity.AirportRef(nil), r.refs...)
}

// Names returns the ordered name table.
func (r *Registry) Names() []NameEntry {
	return append([]NameEntry(nil), r.names...)
}

// SourceIDs returns every source id in ascending order.
func (r *Registry) SourceIDs() []int {
	ids := make([]int, 0, len(r.refs))
	for _, ref := range r.refs {
		ids = append(ids, ref.ID)
	}
	sort.Ints(ids)
	return ids
}

// RegionRank returns the precedence of region, or the number of listed regions for
// regions not listed.
func (r *Registry) RegionRank(region string) int {
	for i, name := range r.regions {
		if name == region {
			return i
		}
	}
	return len(r.regions)
}

// Len returns the number of airports in the table.
func (r *Registry) Len() int {
	return len(r.refs)
}
