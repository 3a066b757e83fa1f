package ecs

// destroyEntity runs the destruction & cascade sweep for entity: every
// entity reachable by following cascade-delete references to entity
// (transitively) is destroyed alongside it, and every surviving
// reference to any destroyed entity is stripped rather than left
// dangling.
func (w *World) destroyEntity(entity Id) {
	if !w.entities.exists(entity) {
		return
	}

	doomed := map[Id]bool{entity: true}
	queue := []Id{entity}
	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]
		for _, rf := range w.reverse.refs(target) {
			if !w.registry.isCascadeDelete(rf.typ) || doomed[rf.source] {
				continue
			}
			doomed[rf.source] = true
			queue = append(queue, rf.source)
		}
	}

	for target := range doomed {
		for _, rf := range w.reverse.refs(target) {
			if doomed[rf.source] {
				continue
			}
			w.stripReference(rf.source, rf.typ)
		}
	}

	for target := range doomed {
		w.removeEntityCompletely(target)
	}

	w.gcArchetypesReferencing(doomed)
}

// gcArchetypesReferencing drops every archetype whose signature still
// names one of the doomed entities (as a direct component type or as a
// relation target) and whose row count has fallen to zero, notifying
// queries so they stop holding a reference to it.
func (w *World) gcArchetypesReferencing(doomed map[Id]bool) {
	for sig, a := range w.archetypes {
		if a.Len() != 0 || a == w.empty {
			continue
		}
		references := false
		for _, t := range a.types {
			if target, ok := relevantReverseTarget(t); ok && doomed[target] {
				references = true
				break
			}
		}
		if !references {
			continue
		}
		delete(w.archetypes, sig)
		for _, t := range a.types {
			list := w.byComponent[t]
			for i, existing := range list {
				if existing == a {
					w.byComponent[t] = append(list[:i], list[i+1:]...)
					break
				}
			}
		}
		w.queries.notifyArchetypeRemoved(a)
	}
}

// stripReference removes a single dangling relation left over after its
// target was destroyed, without going through the command buffer: the
// sweep is already running inside command application and must finish
// synchronously. It still runs the stripped value(s) through
// registryAfterApply so OnRemove and multi-hooks fire the same way they
// do for a user-initiated Remove.
func (w *World) stripReference(source, typ Id) {
	arch, ok := w.byEntity.get(source)
	if !ok {
		return
	}
	current := w.currentValues(source, arch)
	final := copyValues(current)
	delete(final, typ)

	if w.registry.isDontFragment(typ) {
		base := componentIdOf(typ)
		w.dontFrag.remove(source, typ)
		if !w.dontFrag.hasAnyForBase(source, base) {
			marker, _ := Relation(base, Wildcard)
			w.transitionRemoveType(source, marker)
			delete(final, marker)
		}
	} else {
		w.transitionRemoveType(source, typ)
	}

	w.registryAfterApply(source, current, final)
}

// copyValues returns a shallow copy of values, for building a "final"
// snapshot that mutating the original map in place would disturb.
func copyValues(values map[Id]any) map[Id]any {
	out := make(map[Id]any, len(values))
	for t, v := range values {
		out[t] = v
	}
	return out
}

// transitionRemoveType drops a single regular type from an entity's
// archetype immediately, moving it to (or reusing) the archetype for the
// resulting signature. Used only by the destruction sweep, which must
// apply synchronously rather than re-enter the command buffer.
func (w *World) transitionRemoveType(entity, typ Id) {
	arch, ok := w.byEntity.get(entity)
	if !ok || !arch.HasType(typ) {
		return
	}
	newTypes := make([]Id, 0, len(arch.types)-1)
	for _, t := range arch.types {
		if t != typ {
			newTypes = append(newTypes, t)
		}
	}
	values, _ := arch.remove(entity)
	delete(values, typ)
	newArch := w.ensureArchetype(newTypes)
	newArch.add(entity, values)
	w.byEntity.put(entity, newArch)
}

// removeEntityCompletely tears down every trace of entity: its archetype
// row, its don't-fragment entries, the reverse-index entries it owned as
// a source, and finally its id itself, which returns to the allocator's
// freelist.
func (w *World) removeEntityCompletely(entity Id) {
	if arch, ok := w.byEntity.get(entity); ok {
		values, _ := arch.remove(entity)
		for t := range values {
			w.unindexReverse(entity, t)
		}
		w.byEntity.del(entity)
	}
	for t := range w.dontFrag.allForEntity(entity) {
		w.unindexReverse(entity, t)
	}
	w.dontFrag.dropEntity(entity)
	w.reverse.drop(entity)
	_ = w.entities.free(entity)
}
