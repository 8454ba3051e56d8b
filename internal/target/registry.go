package target

import (
	"github.com/nace/disksetup/internal/system"
)

// DefaultTarget is processed when no target is named on the command line
const DefaultTarget = "all"

// Registry is the validated, read-only set of target definitions for a run
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry validates defs and builds a registry. Duplicate ids and group
// members that name undefined targets are configuration errors.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:  make(map[string]Definition, len(defs)),
		order: make([]string, 0, len(defs)),
	}

	for _, def := range defs {
		id := def.ID()
		if id == "" {
			return nil, system.ConfigErrorf("target definition without id")
		}
		if _, exists := r.defs[id]; exists {
			return nil, system.ConfigErrorf("target %q is defined more than once", id)
		}
		r.defs[id] = def
		r.order = append(r.order, id)
	}

	for _, id := range r.order {
		group, ok := r.defs[id].(*Group)
		if !ok {
			continue
		}
		for _, member := range group.Members {
			if _, exists := r.defs[member]; !exists {
				return nil, system.ConfigErrorf("group %q references undefined target %q", id, member)
			}
		}
	}

	return r, nil
}

// Get looks up a definition by id
func (r *Registry) Get(id string) (Definition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// IDs returns target ids in the order they were defined
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of definitions
func (r *Registry) Len() int {
	return len(r.order)
}
