package ecs

import "github.com/plus3/archecs/internal/idmap"

// dontFragmentTable is the world-level side table: present
// for an entity iff it has at least one value for a don't-fragment
// relation, keyed entity -> (relation id -> value). The outer level is an
// idmap.Map since entities are dense integer ids; the inner map stays a
// plain Go map because an entity typically carries only a handful of
// don't-fragment relations, so there's nothing for an intmap to win.
type dontFragmentTable struct {
	byEntity *idmap.Map[Id, map[Id]any]
}

func newDontFragmentTable() *dontFragmentTable {
	return &dontFragmentTable{byEntity: idmap.New[Id, map[Id]any](256)}
}

func (t *dontFragmentTable) set(entity, relation Id, value any) {
	m, ok := t.byEntity.Get(entity)
	if !ok {
		m = make(map[Id]any)
		t.byEntity.Put(entity, m)
	}
	m[relation] = value
}

// remove deletes relation from entity's entry, dropping the entry itself
// once empty. Returns whether anything was present to remove.
func (t *dontFragmentTable) remove(entity, relation Id) bool {
	m, ok := t.byEntity.Get(entity)
	if !ok {
		return false
	}
	if _, ok := m[relation]; !ok {
		return false
	}
	delete(m, relation)
	if len(m) == 0 {
		t.byEntity.Del(entity)
	}
	return true
}

func (t *dontFragmentTable) get(entity, relation Id) (any, bool) {
	m, ok := t.byEntity.Get(entity)
	if !ok {
		return nil, false
	}
	v, ok := m[relation]
	return v, ok
}

// hasAnyForBase reports whether entity has at least one value for a
// don't-fragment relation whose base component is base.
func (t *dontFragmentTable) hasAnyForBase(entity, base Id) bool {
	m, ok := t.byEntity.Get(entity)
	if !ok {
		return false
	}
	for rel := range m {
		if componentIdOf(rel) == base {
			return true
		}
	}
	return false
}

// valuesForBase returns every (target, value) pair entity holds for
// don't-fragment relations whose base component is base.
func (t *dontFragmentTable) valuesForBase(entity, base Id) []TargetValue {
	m, ok := t.byEntity.Get(entity)
	if !ok {
		return nil
	}
	var out []TargetValue
	for rel, v := range m {
		if componentIdOf(rel) == base {
			out = append(out, TargetValue{Target: targetOf(rel), Value: v})
		}
	}
	return out
}

func (t *dontFragmentTable) dropEntity(entity Id) {
	t.byEntity.Del(entity)
}

// allForEntity returns a copy of every don't-fragment relation value entity
// holds, across every base component, keyed by the full relation id.
func (t *dontFragmentTable) allForEntity(entity Id) map[Id]any {
	m, ok := t.byEntity.Get(entity)
	if !ok {
		return nil
	}
	out := make(map[Id]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
