package ecs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/plus3/archecs/internal/idmap"
)

// missingMarker distinguishes "never written" from a stored nil/zero value
// in a column cell. It is never returned to a caller.
var missingMarker = new(struct{})

// TargetValue is one (target, value) pair returned when reading a
// wildcard-relation type off an entity.
type TargetValue struct {
	Target Id
	Value  any
}

// Archetype is the columnar store for every entity sharing an exact
// regular component-type signature, keyed by a canonical sorted-ids
// string rather than a reflect.Type hash. Row compaction is immediate
// swap-with-last across every column and the entities slice together,
// so they stay index-aligned at all times.
type Archetype struct {
	world *World

	signature string
	types     []Id // sorted: regular component/relation ids + wildcard markers
	typeSet   map[Id]bool
	regular   []Id // subset of types that own a column

	entities []Id
	rowOf    *idmap.Map[Id, int]
	columns  map[Id][]any

	plans map[string]*columnPlan
}

func joinIds(ids []Id) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(strconv.FormatInt(int64(id), 10))
	}
	return b.String()
}

// canonicalSignature returns the archetype's canonical key: the sorted
// ids joined by a separator.
func canonicalSignature(types []Id) string {
	sorted := append([]Id(nil), types...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return joinIds(sorted)
}

func newArchetype(world *World, types []Id) *Archetype {
	sorted := append([]Id(nil), types...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	a := &Archetype{
		world:     world,
		signature: joinIds(sorted),
		types:     sorted,
		typeSet:   make(map[Id]bool, len(sorted)),
		rowOf:     idmap.New[Id, int](64),
		columns:   make(map[Id][]any),
		plans:     make(map[string]*columnPlan),
	}
	for _, t := range sorted {
		a.typeSet[t] = true
		if !IsWildcard(t) {
			a.regular = append(a.regular, t)
			a.columns[t] = nil
		}
	}
	return a
}

// Len reports the number of live entities (rows) in the archetype.
func (a *Archetype) Len() int { return len(a.entities) }

// HasType reports whether t is part of this archetype's signature.
func (a *Archetype) HasType(t Id) bool { return a.typeSet[t] }

// add inserts entity as a new row, filling every regular column from
// initial or the internal missing sentinel.
func (a *Archetype) add(entity Id, initial map[Id]any) {
	row := len(a.entities)
	a.entities = append(a.entities, entity)
	for _, t := range a.regular {
		v, ok := initial[t]
		if !ok {
			v = missingMarker
		}
		a.columns[t] = append(a.columns[t], v)
	}
	a.rowOf.Put(entity, row)
}

// remove deletes entity's row, compacting by swapping with the last row,
// and returns the values that were actually present.
func (a *Archetype) remove(entity Id) (map[Id]any, bool) {
	row, ok := a.rowOf.Get(entity)
	if !ok {
		return nil, false
	}

	removed := make(map[Id]any, len(a.regular))
	for _, t := range a.regular {
		if v := a.columns[t][row]; v != any(missingMarker) {
			removed[t] = v
		}
	}

	last := len(a.entities) - 1
	if row != last {
		movedEntity := a.entities[last]
		a.entities[row] = movedEntity
		a.rowOf.Put(movedEntity, row)
		for _, t := range a.regular {
			a.columns[t][row] = a.columns[t][last]
		}
	}
	a.entities = a.entities[:last]
	for _, t := range a.regular {
		a.columns[t] = a.columns[t][:last]
	}
	a.rowOf.Del(entity)

	return removed, true
}

// set writes value directly into a regular column. Fails with
// ErrUnknownComponent if t isn't a regular (non-wildcard) member of the
// signature; don't-fragment relations never reach this path.
func (a *Archetype) set(entity Id, t Id, value any) error {
	row, ok := a.rowOf.Get(entity)
	if !ok {
		return ErrUnknownEntity
	}
	col, ok := a.columns[t]
	if !ok {
		return ErrUnknownComponent
	}
	col[row] = value
	return nil
}

// get reads a regular column cell. ok is false both when the entity is
// absent and when the cell was never written (missing sentinel).
func (a *Archetype) get(entity Id, t Id) (value any, ok bool) {
	row, present := a.rowOf.Get(entity)
	if !present {
		return nil, false
	}
	col, has := a.columns[t]
	if !has {
		return nil, false
	}
	v := col[row]
	if v == any(missingMarker) {
		return nil, false
	}
	return v, true
}

// concreteRelationsAt scans the fragmenting (non-don't-fragment) regular
// columns for relations whose base component is base, returning their
// (target, value) pairs for the given row.
func (a *Archetype) concreteRelationsAt(row int, base Id) []TargetValue {
	var out []TargetValue
	for _, t := range a.regular {
		if !IsRelation(t) || componentIdOf(t) != base {
			continue
		}
		if v := a.columns[t][row]; v != any(missingMarker) {
			out = append(out, TargetValue{Target: targetOf(t), Value: v})
		}
	}
	return out
}

// relationsForBase returns entity's current fragmenting relations whose
// base component is base, or nil if entity isn't in this archetype.
func (a *Archetype) relationsForBase(entity, base Id) []TargetValue {
	row, ok := a.rowOf.Get(entity)
	if !ok {
		return nil
	}
	return a.concreteRelationsAt(row, base)
}

// columnPlan is the per-archetype, per-types-key resolution cache for
// forEachWithComponents: which regular type backs a position, or which
// base component a wildcard position scans, resolved
// once per distinct types-key. The live column slice is looked up fresh
// on every forEachWithComponents call (a cheap map read) rather than
// cached inside the plan, since append() may reallocate a column's
// backing array between calls.
type columnPlan struct {
	steps []planStep
}

type planStep struct {
	wildcard bool
	base     Id // set when wildcard
	typ      Id // set when regular
}

func (a *Archetype) plan(types []Id) *columnPlan {
	key := joinIds(types)
	if p, ok := a.plans[key]; ok {
		return p
	}

	p := &columnPlan{steps: make([]planStep, len(types))}
	for i, t := range types {
		if IsWildcard(t) {
			p.steps[i] = planStep{wildcard: true, base: componentIdOf(t)}
		} else {
			p.steps[i] = planStep{typ: t}
		}
	}
	a.plans[key] = p
	return p
}

// forEachWithComponents invokes fn once per row with one value per
// requested type: a raw column value for a regular type, or a
// []TargetValue for a wildcard-relation position (merging fragmenting
// concrete relations and, through the world's don't-fragment side table,
// non-fragmenting ones). Returning false from fn stops iteration.
func (a *Archetype) forEachWithComponents(types []Id, fn func(entity Id, values []any) bool) {
	plan := a.plan(types)
	values := make([]any, len(types))

	cols := make([][]any, len(plan.steps))
	for i, step := range plan.steps {
		if !step.wildcard {
			cols[i] = a.columns[step.typ]
		}
	}

	for row, entity := range a.entities {
		for i, step := range plan.steps {
			if !step.wildcard {
				v := cols[i][row]
				if v == any(missingMarker) {
					v = nil
				}
				values[i] = v
				continue
			}

			var merged []TargetValue
			if a.world != nil && a.world.registry.isDontFragment(step.base) {
				merged = append(merged, a.world.dontFragmentValuesFor(entity, step.base)...)
			} else {
				merged = append(merged, a.concreteRelationsAt(row, step.base)...)
			}
			values[i] = merged
		}
		if !fn(entity, values) {
			return
		}
	}
}
