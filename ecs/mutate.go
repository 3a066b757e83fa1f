package ecs

// applyEntityBatch applies one entity's commands from a single
// command-buffer batch. A destroy anywhere in the batch wins
// outright: everything else queued for this entity this batch is
// discarded in favor of the destruction sweep.
func (w *World) applyEntityBatch(entity Id, cmds []command) {
	for _, cmd := range cmds {
		if cmd.kind == cmdDestroy {
			w.destroyEntity(entity)
			return
		}
	}

	arch, ok := w.byEntity.get(entity)
	if !ok {
		// Cascaded away earlier in this same fixed-point iteration.
		return
	}

	current := w.currentValues(entity, arch)
	cs := newChangeSet(w.registry)
	for _, cmd := range cmds {
		switch cmd.kind {
		case cmdSet:
			w.applySet(cs, cmd.typ, cmd.value, current)
		case cmdRemove:
			w.applyRemove(cs, cmd.typ, current)
		}
	}

	final := cs.applyTo(current)
	w.syncDontFragment(entity, current, final)
	w.syncReverseIndex(entity, current, final)

	finalTypes, changed := cs.finalTypes(arch.types)
	if !changed {
		for _, t := range arch.regular {
			if v, ok := final[t]; ok {
				_ = arch.set(entity, t, v)
			}
		}
		w.registryAfterApply(entity, current, final)
		return
	}

	newArch := w.ensureArchetype(finalTypes)
	arch.remove(entity)
	newArch.add(entity, final)
	w.byEntity.put(entity, newArch)

	w.registryAfterApply(entity, current, final)
}

// currentValues snapshots every value entity currently holds, regular
// columns and don't-fragment side-table entries alike, keyed by full
// type id. This is the "current map" a changeSet is applied against.
func (w *World) currentValues(entity Id, arch *Archetype) map[Id]any {
	values := make(map[Id]any, len(arch.regular))
	for _, t := range arch.regular {
		if v, ok := arch.get(entity, t); ok {
			values[t] = v
		}
	}
	for t, v := range w.dontFrag.allForEntity(entity) {
		values[t] = v
	}
	return values
}

// applySet folds one set(typ, value) command into cs, expanding the
// exclusive-relation eviction and don't-fragment wildcard-marker
// bookkeeping required around a plain add.
func (w *World) applySet(cs *changeSet, typ Id, value any, current map[Id]any) {
	base := componentIdOf(typ)

	if IsRelation(typ) && w.registry.isExclusive(typ) {
		for existing := range cs.applyTo(current) {
			if existing == typ || !IsRelation(existing) || componentIdOf(existing) != base {
				continue
			}
			cs.remove(existing)
		}
		if !w.registry.isDontFragment(typ) {
			w.dropMarkerIfNoDontFragmentLeft(cs, base, current, typ)
		}
	}

	cs.set(typ, value)

	if w.registry.isDontFragment(typ) {
		marker, _ := Relation(base, Wildcard)
		if _, has := cs.applyTo(current)[marker]; !has {
			cs.set(marker, struct{}{})
		}
	}
}

// applyRemove folds one remove(typ) command into cs. A wildcard typ
// expands to every concrete relation currently present on that base; a
// concrete don't-fragment relation also drops its base's wildcard
// marker once it was the last one.
func (w *World) applyRemove(cs *changeSet, typ Id, current map[Id]any) {
	if Classify(typ) == KindWildcardRelation {
		base := componentIdOf(typ)
		for existing := range cs.applyTo(current) {
			if IsRelation(existing) && componentIdOf(existing) == base {
				cs.remove(existing)
			}
		}
		cs.remove(typ)
		return
	}

	cs.remove(typ)
	if IsRelation(typ) && w.registry.isDontFragment(typ) {
		w.dropMarkerIfNoDontFragmentLeft(cs, componentIdOf(typ), current, typ)
	}
}

// dropMarkerIfNoDontFragmentLeft removes base's wildcard marker from cs
// once no don't-fragment relation on base survives, ignoring except
// (the relation the caller is in the middle of evicting or removing).
func (w *World) dropMarkerIfNoDontFragmentLeft(cs *changeSet, base Id, current map[Id]any, except Id) {
	for existing := range cs.applyTo(current) {
		if existing == except || IsWildcard(existing) {
			continue
		}
		if w.registry.isDontFragment(existing) && componentIdOf(existing) == base {
			return
		}
	}
	marker, _ := Relation(base, Wildcard)
	cs.remove(marker)
}

// syncDontFragment writes the side-table delta between current and final
// for every don't-fragment relation key touched.
func (w *World) syncDontFragment(entity Id, current, final map[Id]any) {
	for t := range current {
		if !w.registry.isDontFragment(t) || IsWildcard(t) {
			continue
		}
		if _, ok := final[t]; !ok {
			w.dontFrag.remove(entity, t)
		}
	}
	for t, v := range final {
		if w.registry.isDontFragment(t) && !IsWildcard(t) {
			w.dontFrag.set(entity, t, v)
		}
	}
}

// syncReverseIndex updates the reverse index for every key (regular or
// don't-fragment) whose presence changed between current and final.
func (w *World) syncReverseIndex(entity Id, current, final map[Id]any) {
	for t := range current {
		if _, ok := final[t]; !ok {
			w.unindexReverse(entity, t)
		}
	}
	for t := range final {
		if _, existed := current[t]; !existed {
			w.indexReverse(entity, t)
		}
	}
}
