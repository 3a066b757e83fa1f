package ecs

// snapshotVersion is bumped whenever the Snapshot shape changes in a way
// that breaks older encoded snapshots.
const snapshotVersion = 1

// Snapshot is the in-memory form World.Serialize/Restore exchange. It
// names no wire format: component values are carried as opaque `any`,
// leaving encoding up to the caller.
type Snapshot struct {
	Version       int
	EntityManager EntityManagerSnapshot
	Entities      []EntitySnapshot
}

// EntityManagerSnapshot is the entity allocator's serializable state.
type EntityManagerSnapshot struct {
	NextId   Id
	Freelist []Id
}

// EntitySnapshot is one live entity and every component/relation value it
// held at serialization time.
type EntitySnapshot struct {
	Id         Id
	Components []ComponentSnapshot
}

// ComponentSnapshot is a single (type, value) pair within an
// EntitySnapshot. Type may be a bare component id or a concrete relation
// id; wildcard markers are never serialized, since they're derived from
// the don't-fragment values they summarize and get regenerated on
// restore.
type ComponentSnapshot struct {
	Type  Id
	Value any
}

// Serialize captures every live entity's full component/relation map.
// Wildcard markers are omitted: they're reconstructed by Restore from
// the don't-fragment values alone.
func (w *World) Serialize() Snapshot {
	snap := Snapshot{
		Version: snapshotVersion,
		EntityManager: EntityManagerSnapshot{
			NextId:   w.entities.cursor,
			Freelist: append([]Id(nil), w.entities.freelist...),
		},
	}

	w.byEntity.m.ForEach(func(entity Id, arch *Archetype) bool {
		es := EntitySnapshot{Id: entity}
		for _, t := range arch.regular {
			if IsWildcard(t) {
				continue
			}
			if v, ok := arch.get(entity, t); ok {
				es.Components = append(es.Components, ComponentSnapshot{Type: t, Value: v})
			}
		}
		for t, v := range w.dontFrag.allForEntity(entity) {
			es.Components = append(es.Components, ComponentSnapshot{Type: t, Value: v})
		}
		snap.Entities = append(snap.Entities, es)
		return true
	})

	return snap
}

// Restore rebuilds World's entity population from a prior Serialize
// call, restoring the allocator, then for each entity creating (or
// reusing) its archetype, adding the entity with its value map, and
// rebuilding the reverse index.
//
// Restore expects every component type named in the snapshot to already
// be registered on w with matching trait flags (Exclusive/CascadeDelete/
// DontFragment): the registry is world-bound state, not part of the
// snapshot, so there is no way to recover trait flags from a bare id
// alone. Call World.Component for every type before calling Restore; see
// DESIGN.md for why Restore is a two-step method rather than a
// snapshot-taking constructor.
func (w *World) Restore(snap Snapshot) {
	live := make([]Id, 0, len(snap.Entities))
	for _, es := range snap.Entities {
		live = append(live, es.Id)
	}
	w.entities.restore(allocatorSnapshot{
		Cursor:   snap.EntityManager.NextId,
		Freelist: snap.EntityManager.Freelist,
	}, live)

	for _, es := range snap.Entities {
		values := make(map[Id]any, len(es.Components))
		for _, c := range es.Components {
			values[c.Type] = c.Value
		}

		types := make([]Id, 0, len(es.Components))
		markerSeen := make(map[Id]bool)
		for t := range values {
			if w.registry.isDontFragment(t) {
				base := componentIdOf(t)
				if !markerSeen[base] {
					marker, _ := Relation(base, Wildcard)
					types = append(types, marker)
					markerSeen[base] = true
				}
				continue
			}
			types = append(types, t)
		}

		arch := w.ensureArchetype(types)
		arch.add(es.Id, values)
		w.byEntity.put(es.Id, arch)

		for t, v := range values {
			if w.registry.isDontFragment(t) {
				w.dontFrag.set(es.Id, t, v)
			}
			w.indexReverse(es.Id, t)
		}
	}
}
