package ecs

import (
	"fmt"

	"github.com/plus3/archecs/internal/bitset"
)

// ComponentOptions configures a component registered via World.Component.
type ComponentOptions struct {
	// Name binds a unique, process-independent name to the component id.
	// Registering the same name twice fails with ErrDuplicateComponentName.
	Name string
	// Exclusive means an entity may carry at most one relation whose base
	// component is this one; setting a new one evicts the old one.
	Exclusive bool
	// CascadeDelete means destroying the target of an entity-relation using
	// this component destroys the sourcing entity too.
	CascadeDelete bool
	// DontFragment keeps relations using this component out of archetype
	// signatures; their values live in the world's side table instead.
	DontFragment bool
}

// componentRegistry owns the monotonic component id space, the optional
// name bindings, and the trait bitsets the id codec's trait checks read.
// It is bound to a single World rather than a process-wide table, so
// that two worlds registering components in a different order never
// collide on name or trait state.
type componentRegistry struct {
	nextId Id
	byName map[string]Id

	exclusive     bitset.Set
	cascadeDelete bitset.Set
	dontFragment  bitset.Set
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		nextId: 1,
		byName: make(map[string]Id),
	}
}

func (r *componentRegistry) register(opts ComponentOptions) (Id, error) {
	if opts.Name != "" {
		if _, exists := r.byName[opts.Name]; exists {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateComponentName, opts.Name)
		}
	}
	if r.nextId > MaxComponentId {
		return 0, ErrOutOfComponentIds
	}

	id := r.nextId
	r.nextId++

	if opts.Name != "" {
		r.byName[opts.Name] = id
	}
	if opts.Exclusive {
		r.exclusive.Add(int(id))
	}
	if opts.CascadeDelete {
		r.cascadeDelete.Add(int(id))
	}
	if opts.DontFragment {
		r.dontFragment.Add(int(id))
	}

	return id, nil
}

func (r *componentRegistry) isExclusive(id Id) bool {
	base := componentIdOf(id)
	return base != 0 && r.exclusive.Test(int(base))
}

func (r *componentRegistry) isCascadeDelete(id Id) bool {
	base := componentIdOf(id)
	return base != 0 && r.cascadeDelete.Test(int(base))
}

func (r *componentRegistry) isDontFragment(id Id) bool {
	base := componentIdOf(id)
	return base != 0 && r.dontFragment.Test(int(base))
}
