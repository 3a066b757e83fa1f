// Package idmap wraps github.com/kamstrup/intmap's integer-keyed hash map
// for the handful of hot paths in the ecs package that are keyed by an
// entity id: the entity→archetype index, the entity→row index inside an
// archetype, the reverse index, and the don't-fragment side table.
package idmap

import "github.com/kamstrup/intmap"

// Key is the set of integer representations intmap accepts.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Map is a thin generic wrapper so callers in ecs don't import intmap
// directly: Get/Put/Del for the common case, plus Len/ForEach for the
// few places that need to enumerate a whole index.
type Map[K Key, V any] struct {
	m *intmap.Map[K, V]
}

// New creates a Map with sizeHint as the expected number of entries.
func New[K Key, V any](sizeHint int) *Map[K, V] {
	return &Map[K, V]{m: intmap.New[K, V](sizeHint)}
}

func (m *Map[K, V]) Get(k K) (V, bool) { return m.m.Get(k) }

func (m *Map[K, V]) Put(k K, v V) { m.m.Put(k, v) }

func (m *Map[K, V]) Del(k K) { m.m.Del(k) }

func (m *Map[K, V]) Has(k K) bool { return m.m.Has(k) }

func (m *Map[K, V]) Len() int { return m.m.Len() }

// ForEach visits every entry; fn returning false stops iteration early.
func (m *Map[K, V]) ForEach(fn func(K, V) bool) { m.m.ForEach(fn) }
