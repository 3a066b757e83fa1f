package ecs

import "github.com/plus3/archecs/internal/idmap"

// ref is one entry in the reverse index: source had a component/relation
// of type that referenced the indexed target entity.
type ref struct {
	source Id
	typ    Id
}

// reverseIndex answers, for any entity used as a relation target or as a
// component type directly, the set of (source, type) pairs referencing
// it. The outer target-keyed level is an idmap.Map; the per-target set is
// a plain map[ref]struct{}, since intmap can't key on the composite
// (source,type) pair.
type reverseIndex struct {
	byTarget *idmap.Map[Id, map[ref]struct{}]
}

func newReverseIndex() *reverseIndex {
	return &reverseIndex{byTarget: idmap.New[Id, map[ref]struct{}](256)}
}

func (r *reverseIndex) add(target, source, typ Id) {
	set, ok := r.byTarget.Get(target)
	if !ok {
		set = make(map[ref]struct{})
		r.byTarget.Put(target, set)
	}
	set[ref{source: source, typ: typ}] = struct{}{}
}

func (r *reverseIndex) remove(target, source, typ Id) {
	set, ok := r.byTarget.Get(target)
	if !ok {
		return
	}
	delete(set, ref{source: source, typ: typ})
	if len(set) == 0 {
		r.byTarget.Del(target)
	}
}

// refs returns a snapshot slice of every (source, type) pair referencing
// target, safe for the caller to range over while mutating the index.
func (r *reverseIndex) refs(target Id) []ref {
	set, ok := r.byTarget.Get(target)
	if !ok {
		return nil
	}
	out := make([]ref, 0, len(set))
	for rf := range set {
		out = append(out, rf)
	}
	return out
}

func (r *reverseIndex) drop(target Id) {
	r.byTarget.Del(target)
}
