package ecs

import (
	"fmt"

	"github.com/plus3/archecs/internal/idmap"
)

// entityArchetypeIndex tracks which archetype currently owns each live
// entity. A thin idmap wrapper rather than a bare field so World's
// archetype-transition code reads as put/get/del regardless of the
// underlying map implementation.
type entityArchetypeIndex struct {
	m *idmap.Map[Id, *Archetype]
}

func newEntityArchetypeIndex() *entityArchetypeIndex {
	return &entityArchetypeIndex{m: idmap.New[Id, *Archetype](256)}
}

func (idx *entityArchetypeIndex) get(id Id) (*Archetype, bool) { return idx.m.Get(id) }
func (idx *entityArchetypeIndex) put(id Id, a *Archetype)      { idx.m.Put(id, a) }
func (idx *entityArchetypeIndex) del(id Id)                    { idx.m.Del(id) }

// World is the root of one ECS instance: the component registry, entity
// allocator, archetype table, don't-fragment side table, reverse index,
// query cache, hook registry, and the command buffer every mutator feeds
// into. Entity identity, relation bookkeeping, and deferred execution
// all live on World directly rather than behind a separate ref type,
// since entity ids never change across archetype moves here.
type World struct {
	registry *componentRegistry
	entities *entityAllocator
	reverse  *reverseIndex
	dontFrag *dontFragmentTable
	queries  *queryCache
	hooks    *hookRegistry
	buffer   *CommandBuffer

	archetypes  map[string]*Archetype
	byComponent map[Id][]*Archetype
	byEntity    *entityArchetypeIndex
	empty       *Archetype
}

// New creates an empty World.
func New() *World {
	w := &World{
		registry:    newComponentRegistry(),
		entities:    newEntityAllocator(),
		reverse:     newReverseIndex(),
		dontFrag:    newDontFragmentTable(),
		archetypes:  make(map[string]*Archetype),
		byComponent: make(map[Id][]*Archetype),
	}
	w.byEntity = newEntityArchetypeIndex()
	w.queries = newQueryCache()
	w.hooks = newHookRegistry(w)
	w.buffer = newCommandBuffer(w)
	w.empty = w.ensureArchetype(nil)
	return w
}

// Component registers a new component and returns its id.
func (w *World) Component(opts ComponentOptions) (Id, error) {
	return w.registry.register(opts)
}

// Relation packs componentId and target into a relation id.
// It is exposed on World only for symmetry with Component; the codec
// itself needs no World state.
func (w *World) Relation(componentId, target Id) (Id, error) {
	return Relation(componentId, target)
}

// Spawn allocates a fresh entity id and places it in the empty archetype.
func (w *World) Spawn() Id {
	id := w.entities.allocate()
	w.empty.add(id, nil)
	w.byEntity.put(id, w.empty)
	return id
}

// Exists reports whether id names a currently live entity.
func (w *World) Exists(id Id) bool { return w.entities.exists(id) }

// Set enqueues a value write for (entity, typ). It fails synchronously,
// before anything is queued, if entity doesn't exist or typ is a
// wildcard relation, which can never be written directly.
func (w *World) Set(entity, typ Id, value any) error {
	if !w.entities.exists(entity) {
		return fmt.Errorf("%w: entity %d", ErrUnknownEntity, entity)
	}
	if Classify(typ) == KindWildcardRelation {
		return fmt.Errorf("%w: %d", ErrIllegalWildcardWrite, typ)
	}
	w.buffer.set(entity, typ, value)
	return nil
}

// Remove enqueues removal of typ from entity. typ may be a wildcard
// relation, which expands to every concrete relation on that base at
// apply time.
func (w *World) Remove(entity, typ Id) error {
	if !w.entities.exists(entity) {
		return fmt.Errorf("%w: entity %d", ErrUnknownEntity, entity)
	}
	w.buffer.removeCmd(entity, typ)
	return nil
}

// Delete enqueues destruction of entity. It is idempotent: destroying a
// nonexistent or already-queued-for-destruction entity is a no-op.
func (w *World) Delete(entity Id) error {
	if !w.entities.exists(entity) {
		return nil
	}
	w.buffer.destroy(entity)
	return nil
}

// Sync drains the command buffer to a fixed point, applying every queued
// mutation and the lifecycle hooks they trigger.
func (w *World) Sync() error {
	return w.buffer.execute()
}

// Has reports whether entity currently carries typ. For a wildcard
// relation it reports whether entity has at least one concrete relation
// on that base, fragmenting or not.
func (w *World) Has(entity, typ Id) bool {
	arch, ok := w.byEntity.get(entity)
	if !ok {
		return false
	}
	if Classify(typ) == KindWildcardRelation {
		return archetypeHasWildcardBase(arch, componentIdOf(typ))
	}
	if w.registry.isDontFragment(typ) {
		_, ok := w.dontFrag.get(entity, typ)
		return ok
	}
	_, ok = arch.get(entity, typ)
	return ok
}

// Get reads entity's value for typ. A wildcard relation always succeeds,
// returning every current (target, value) pair for that base as a
// []TargetValue (possibly empty) rather than erroring: the wildcard form
// names a set of relations, not a single slot an entity either has or
// lacks. Any other absent type fails with ErrUnknownComponent.
func (w *World) Get(entity, typ Id) (any, error) {
	arch, ok := w.byEntity.get(entity)
	if !ok {
		return nil, fmt.Errorf("%w: entity %d", ErrUnknownEntity, entity)
	}

	if Classify(typ) == KindWildcardRelation {
		base := componentIdOf(typ)
		if w.registry.isDontFragment(base) {
			return w.dontFrag.valuesForBase(entity, base), nil
		}
		return arch.relationsForBase(entity, base), nil
	}

	if w.registry.isDontFragment(typ) {
		v, ok := w.dontFrag.get(entity, typ)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownComponent, typ)
		}
		return v, nil
	}

	v, ok := arch.get(entity, typ)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownComponent, typ)
	}
	return v, nil
}

// GetOptional is Get without the error: ok is false wherever Get would
// have failed.
func (w *World) GetOptional(entity, typ Id) (value any, ok bool) {
	v, err := w.Get(entity, typ)
	if err != nil {
		return nil, false
	}
	return v, true
}

// dontFragmentValuesFor backs Archetype.forEachWithComponents's wildcard
// column merge; kept as a thin World method so Archetype never reaches
// into dontFrag directly.
func (w *World) dontFragmentValuesFor(entity, base Id) []TargetValue {
	return w.dontFrag.valuesForBase(entity, base)
}

// ensureArchetype returns the archetype for types, creating and
// registering it (and notifying the query cache) if it doesn't exist yet.
func (w *World) ensureArchetype(types []Id) *Archetype {
	sig := canonicalSignature(types)
	if a, ok := w.archetypes[sig]; ok {
		return a
	}
	a := newArchetype(w, types)
	w.archetypes[sig] = a
	for _, t := range a.types {
		w.byComponent[t] = append(w.byComponent[t], a)
	}
	w.queries.notifyNewArchetype(a)
	return a
}

// archetypesFor returns every archetype whose signature contains t,
// the index CreateQuery narrows its candidate set against.
func (w *World) archetypesFor(t Id) []*Archetype { return w.byComponent[t] }

// relevantReverseTarget reports the entity a reference to typ points at,
// if any: typ itself when it's an entity used directly as a component
// type, or its relation target when it's an entity-relation. Component
// ids and component-relations don't reference an entity and are excluded.
func relevantReverseTarget(typ Id) (Id, bool) {
	switch Classify(typ) {
	case KindEntity:
		return typ, true
	case KindEntityRelation:
		return targetOf(typ), true
	default:
		return 0, false
	}
}

func (w *World) indexReverse(source, typ Id) {
	if target, ok := relevantReverseTarget(typ); ok {
		w.reverse.add(target, source, typ)
	}
}

func (w *World) unindexReverse(source, typ Id) {
	if target, ok := relevantReverseTarget(typ); ok {
		w.reverse.remove(target, source, typ)
	}
}
