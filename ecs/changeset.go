package ecs

import "sort"

// changeSet accumulates one entity's pending adds and removes within a
// single command-buffer batch. set(t) evicts t from removes
// and vice versa, so a set/remove pair ordered either way always lands on
// whichever happened last.
type changeSet struct {
	registry *componentRegistry
	adds     map[Id]any
	removes  map[Id]bool
}

func newChangeSet(registry *componentRegistry) *changeSet {
	return &changeSet{
		registry: registry,
		adds:     make(map[Id]any),
		removes:  make(map[Id]bool),
	}
}

func (c *changeSet) set(t Id, v any) {
	delete(c.removes, t)
	c.adds[t] = v
}

func (c *changeSet) remove(t Id) {
	delete(c.adds, t)
	c.removes[t] = true
}

// applyTo returns a new map combining current with this change set's
// removes and adds, without mutating current.
func (c *changeSet) applyTo(current map[Id]any) map[Id]any {
	result := make(map[Id]any, len(current)+len(c.adds))
	for t, v := range current {
		if c.removes[t] {
			continue
		}
		result[t] = v
	}
	for t, v := range c.adds {
		result[t] = v
	}
	return result
}

// finalTypes returns the sorted archetype-affecting type list that would
// result from applying this change set to currentTypes, and whether it
// differs from currentTypes. Don't-fragment concrete relations never
// affect the signature (only their wildcard marker can), so an add of one
// is excluded here even though it's still present in applyTo's result.
func (c *changeSet) finalTypes(currentTypes []Id) (types []Id, changed bool) {
	present := make(map[Id]bool, len(currentTypes)+len(c.adds))
	for _, t := range currentTypes {
		present[t] = true
	}
	for t := range c.removes {
		delete(present, t)
	}
	for t := range c.adds {
		// A concrete don't-fragment relation never touches the signature;
		// its base's wildcard marker does, and the marker id itself also
		// satisfies isDontFragment (its base is the dontFragment component),
		// so it must be excluded from the skip, not caught by it.
		if c.registry.isDontFragment(t) && !IsWildcard(t) {
			continue
		}
		present[t] = true
	}

	result := make([]Id, 0, len(present))
	for t := range present {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	if sameIds(result, currentTypes) {
		return currentTypes, false
	}
	return result, true
}

func sameIds(a, b []Id) bool {
	if len(a) != len(b) {
		return false
	}
	sorted := append([]Id(nil), b...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := range a {
		if a[i] != sorted[i] {
			return false
		}
	}
	return true
}
