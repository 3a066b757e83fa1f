package ecs

// HookCallbacks is the set of lifecycle callbacks a single-type hook may
// register. Any of the three may be nil.
type HookCallbacks struct {
	// OnInit fires once per already-existing entity carrying the
	// registered type, at registration time.
	OnInit func(w *World, entity Id, value any)
	// OnSet fires after the registered type's value is written, for both
	// first-add and overwrite.
	OnSet func(w *World, entity Id, value any)
	// OnRemove fires after the registered type's value is gone, receiving
	// the value it held just before removal.
	OnRemove func(w *World, entity Id, prevValue any)
}

// MultiHookCallbacks observes a tuple of component types together.
type MultiHookCallbacks struct {
	// OnSet fires when entity first satisfies every required type, and
	// again on any later batch that changes one of the required or
	// optional types while the entity still satisfies the required set.
	OnSet func(w *World, entity Id, values map[Id]any)
	// OnRemove fires when entity stops satisfying the required set,
	// receiving the values it held just before losing that status.
	OnRemove func(w *World, entity Id, values map[Id]any)
}

// HookHandle identifies a registered hook for Unhook. It carries no
// exported fields; callers only ever pass it back.
type HookHandle struct {
	id    uint64
	typ   Id // set for a single-type hook
	multi bool
}

type singleHook struct {
	id uint64
	cb HookCallbacks
}

type multiHook struct {
	id        uint64
	required  []Id
	optional  []Id
	cb        MultiHookCallbacks
	satisfied map[Id]bool
}

// hookRegistry dispatches lifecycle hooks after every entity mutation
// batch. It keys single-type hooks by exact type rather than by
// archetype, so single-type dispatch touches only the hooks registered
// for a type (or its wildcard form). Multi-component hooks are kept in
// one flat list with no per-archetype match cache: every one of them is
// checked (touchedBy) on every entity batch.
type hookRegistry struct {
	world  *World
	nextId uint64

	byType map[Id][]*singleHook
	multis []*multiHook
}

func newHookRegistry(w *World) *hookRegistry {
	return &hookRegistry{world: w, byType: make(map[Id][]*singleHook)}
}

// Hook registers cb against typ: a bare component id, a concrete relation
// id, or a wildcard-relation id. If cb.OnInit is set, it is invoked
// immediately for every entity already carrying typ.
func (w *World) Hook(typ Id, cb HookCallbacks) *HookHandle {
	w.hooks.nextId++
	h := &singleHook{id: w.hooks.nextId, cb: cb}
	w.hooks.byType[typ] = append(w.hooks.byType[typ], h)

	if cb.OnInit != nil {
		w.forEachEntityHaving(typ, func(entity Id, value any) {
			cb.OnInit(w, entity, value)
		})
	}

	return &HookHandle{id: h.id, typ: typ}
}

// HookMulti registers a multi-component hook over required (and
// optionally optional) types. There is no on-init pass for multi-hooks;
// they start observing from the next mutation.
func (w *World) HookMulti(required, optional []Id, cb MultiHookCallbacks) *HookHandle {
	w.hooks.nextId++
	h := &multiHook{
		id:        w.hooks.nextId,
		required:  append([]Id(nil), required...),
		optional:  append([]Id(nil), optional...),
		cb:        cb,
		satisfied: make(map[Id]bool),
	}
	w.hooks.multis = append(w.hooks.multis, h)
	return &HookHandle{id: h.id, multi: true}
}

// Unhook removes a previously registered hook. A nil or already-removed
// handle is a no-op.
func (w *World) Unhook(h *HookHandle) {
	if h == nil {
		return
	}
	if h.multi {
		reg := w.hooks
		for i, m := range reg.multis {
			if m.id == h.id {
				reg.multis = append(reg.multis[:i], reg.multis[i+1:]...)
				return
			}
		}
		return
	}
	list := w.hooks.byType[h.typ]
	for i, s := range list {
		if s.id == h.id {
			w.hooks.byType[h.typ] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// forEachEntityHaving walks every live entity and invokes fn(entity,
// value) for each one currently carrying typ, used by Hook's on_init
// pass. It is a plain linear scan rather than a query: it runs once per
// Hook call, never on a hot path.
func (w *World) forEachEntityHaving(typ Id, fn func(entity Id, value any)) {
	w.byEntity.m.ForEach(func(entity Id, _ *Archetype) bool {
		if w.Has(entity, typ) {
			if v, ok := w.GetOptional(entity, typ); ok {
				fn(entity, v)
			} else {
				fn(entity, nil)
			}
		}
		return true
	})
}

// registryAfterApply dispatches every hook interested in the delta
// between current and final for one entity, once its change set has
// been fully applied and its archetype membership (if it moved) is
// stable. Removes dispatch before sets within the batch, which is also
// why a type touched by both a remove and a re-add in the same batch is
// treated here as a single value change (on_set only): this registry
// tracks the entity's before/after value maps, not the individual
// commands that produced them, so a remove-then-set pair on the same type
// within one sync is indistinguishable from a plain overwrite.
func (w *World) registryAfterApply(entity Id, current, final map[Id]any) {
	reg := w.hooks

	for t, prev := range current {
		if _, still := final[t]; still {
			continue
		}
		reg.dispatchSingle(t, false, w, entity, prev)
	}
	for t, v := range final {
		prev, existed := current[t]
		if existed && equalValue(prev, v) {
			continue
		}
		reg.dispatchSingle(t, true, w, entity, v)
	}

	reg.dispatchMulti(w, entity, current, final)
}

// dispatchSingle fires every hook registered on t directly and, if t is
// any relation, every hook registered on t's wildcard form too.
func (r *hookRegistry) dispatchSingle(t Id, isSet bool, w *World, entity Id, value any) {
	r.fireExact(t, isSet, w, entity, value)
	if IsRelation(t) && !IsWildcard(t) {
		r.fireExact(WildcardOf(t), isSet, w, entity, value)
	}
}

func (r *hookRegistry) fireExact(t Id, isSet bool, w *World, entity Id, value any) {
	for _, h := range r.byType[t] {
		if isSet {
			if h.cb.OnSet != nil {
				h.cb.OnSet(w, entity, value)
			}
		} else if h.cb.OnRemove != nil {
			h.cb.OnRemove(w, entity, value)
		}
	}
}

func (r *hookRegistry) dispatchMulti(w *World, entity Id, current, final map[Id]any) {
	for _, h := range r.multis {
		if !h.touchedBy(current, final) {
			continue
		}

		satisfiesNow := true
		for _, req := range h.required {
			if _, ok := final[req]; !ok {
				satisfiesNow = false
				break
			}
		}
		wasSatisfied := h.satisfied[entity]

		switch {
		case satisfiesNow:
			h.satisfied[entity] = true
			if h.cb.OnSet != nil {
				h.cb.OnSet(w, entity, h.collect(final))
			}
		case wasSatisfied:
			delete(h.satisfied, entity)
			if h.cb.OnRemove != nil {
				h.cb.OnRemove(w, entity, h.collect(current))
			}
		}
	}
}

// touchedBy reports whether any type this hook cares about differs
// between current and final, so unrelated mutations skip the hook
// entirely.
func (h *multiHook) touchedBy(current, final map[Id]any) bool {
	for _, t := range h.required {
		if !sameEntry(current, final, t) {
			return true
		}
	}
	for _, t := range h.optional {
		if !sameEntry(current, final, t) {
			return true
		}
	}
	return false
}

func sameEntry(a, b map[Id]any, t Id) bool {
	av, aok := a[t]
	bv, bok := b[t]
	if aok != bok {
		return false
	}
	return !aok || equalValue(av, bv)
}

func (h *multiHook) collect(values map[Id]any) map[Id]any {
	out := make(map[Id]any, len(h.required)+len(h.optional))
	for _, t := range h.required {
		if v, ok := values[t]; ok {
			out[t] = v
		}
	}
	for _, t := range h.optional {
		if v, ok := values[t]; ok {
			out[t] = v
		}
	}
	return out
}

// equalValue compares two component values for the purpose of deciding
// whether a hook fires. Comparable values compare by ==; anything else
// (slices, maps, funcs) is treated as always-changed, matching how the
// rest of the runtime never assumes component values are comparable.
func equalValue(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
