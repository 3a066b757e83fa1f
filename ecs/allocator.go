package ecs

import "fmt"

// entityAllocator hands out entity ids starting at MinEntityId, reusing
// freed ids from an internal freelist before incrementing the cursor.
// Grounded on edwinsyarief/lazyecs's entity allocator (cursor + freelist),
// the one repo in the pack that recycles entity indices the way this spec
// requires instead of letting dead archetype rows accumulate.
type entityAllocator struct {
	cursor   Id
	freelist []Id
	live     map[Id]bool
}

func newEntityAllocator() *entityAllocator {
	return &entityAllocator{
		cursor: MinEntityId,
		live:   make(map[Id]bool),
	}
}

// allocate returns a fresh or recycled entity id.
func (a *entityAllocator) allocate() Id {
	var id Id
	if n := len(a.freelist); n > 0 {
		id = a.freelist[n-1]
		a.freelist = a.freelist[:n-1]
	} else {
		id = a.cursor
		a.cursor++
	}
	a.live[id] = true
	return id
}

// free returns id to the freelist. Freeing an id that was never allocated
// (or already freed) is an error; freeing is not itself idempotent, unlike
// the public World.Delete, which checks existence before calling free.
func (a *entityAllocator) free(id Id) error {
	if !a.live[id] {
		return fmt.Errorf("%w: entity %d", ErrUnknownEntity, id)
	}
	delete(a.live, id)
	a.freelist = append(a.freelist, id)
	return nil
}

func (a *entityAllocator) exists(id Id) bool {
	return a.live[id]
}

// allocatorSnapshot is the serializable form of an entityAllocator's state:
// the next cursor value and the recycled-id freelist.
type allocatorSnapshot struct {
	Cursor   Id   `json:"cursor"`
	Freelist []Id `json:"freelist"`
}

func (a *entityAllocator) snapshot() allocatorSnapshot {
	freelist := make([]Id, len(a.freelist))
	copy(freelist, a.freelist)
	return allocatorSnapshot{Cursor: a.cursor, Freelist: freelist}
}

func (a *entityAllocator) restore(s allocatorSnapshot, live []Id) {
	a.cursor = s.Cursor
	a.freelist = append([]Id(nil), s.Freelist...)
	a.live = make(map[Id]bool, len(live))
	for _, id := range live {
		a.live[id] = true
	}
}
