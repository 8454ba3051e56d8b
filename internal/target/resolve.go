package target

import (
	"strings"

	"github.com/nace/disksetup/internal/system"
)

// Operation is one leaf reached while expanding a requested target
type Operation struct {
	Leaf *Leaf
	Path []string // requested id down to the leaf id
}

// Via renders the expansion path, e.g. "all > data"
func (o Operation) Via() string {
	return strings.Join(o.Path, " > ")
}

// Resolve expands id into leaf operations. Groups are expanded depth first
// in member order; a leaf yields itself. Groups without members contribute
// nothing. A group that reaches itself again is a configuration error.
func (r *Registry) Resolve(id string) ([]Operation, error) {
	var ops []Operation
	if err := r.resolve(id, nil, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

// ResolveAll resolves each id in turn and concatenates the results
func (r *Registry) ResolveAll(ids []string) ([]Operation, error) {
	var ops []Operation
	for _, id := range ids {
		resolved, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		ops = append(ops, resolved...)
	}
	return ops, nil
}

func (r *Registry) resolve(id string, path []string, ops *[]Operation) error {
	def, ok := r.defs[id]
	if !ok {
		if len(path) == 0 {
			return system.ConfigErrorf("target %q is not defined", id)
		}
		return system.ConfigErrorf("group %q references undefined target %q", path[len(path)-1], id)
	}

	for _, seen := range path {
		if seen == id {
			cycle := append(append([]string{}, path...), id)
			return system.ConfigErrorf("cyclic group membership: %s", strings.Join(cycle, " -> "))
		}
	}
	path = append(path[:len(path):len(path)], id)

	switch def := def.(type) {
	case *Leaf:
		*ops = append(*ops, Operation{Leaf: def, Path: path})
	case *Group:
		for _, member := range def.Members {
			if err := r.resolve(member, path, ops); err != nil {
				return err
			}
		}
	}
	return nil
}
