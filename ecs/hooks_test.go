package ecs_test

import (
	"testing"

	"github.com/plus3/archecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookOnSetAndOnRemove(t *testing.T) {
	w, posId, _, _ := newTestWorld(t)

	var sets, removes []Position
	w.Hook(posId, ecs.HookCallbacks{
		OnSet: func(_ *ecs.World, _ ecs.Id, v any) { sets = append(sets, v.(Position)) },
		OnRemove: func(_ *ecs.World, _ ecs.Id, v any) {
			removes = append(removes, v.(Position))
		},
	})

	e := w.Spawn()
	require.NoError(t, w.Set(e, posId, Position{X: 1}))
	require.NoError(t, w.Sync())
	assert.Equal(t, []Position{{X: 1}}, sets)
	assert.Empty(t, removes)

	require.NoError(t, w.Remove(e, posId))
	require.NoError(t, w.Sync())
	assert.Equal(t, []Position{{X: 1}}, removes)
}

func TestHookOnInitFiresForExistingEntities(t *testing.T) {
	w, posId, _, _ := newTestWorld(t)

	e1 := w.Spawn()
	e2 := w.Spawn()
	require.NoError(t, w.Set(e1, posId, Position{X: 1}))
	require.NoError(t, w.Set(e2, posId, Position{X: 2}))
	require.NoError(t, w.Sync())

	var seen []ecs.Id
	w.Hook(posId, ecs.HookCallbacks{
		OnInit: func(_ *ecs.World, e ecs.Id, _ any) { seen = append(seen, e) },
	})

	assert.ElementsMatch(t, []ecs.Id{e1, e2}, seen)
}

func TestHookFiresOnWildcardFormForRelations(t *testing.T) {
	w := ecs.New()
	tagId, err := w.Component(ecs.ComponentOptions{Name: "Tag"})
	require.NoError(t, err)
	posId, err := w.Component(ecs.ComponentOptions{Name: "Position"})
	require.NoError(t, err)

	wildcard, err := w.Relation(tagId, ecs.Wildcard)
	require.NoError(t, err)

	var wildcardFired int
	w.Hook(wildcard, ecs.HookCallbacks{
		OnSet: func(_ *ecs.World, _ ecs.Id, _ any) { wildcardFired++ },
	})

	e := w.Spawn()
	rel, err := w.Relation(tagId, posId)
	require.NoError(t, err)
	require.NoError(t, w.Set(e, rel, nil))
	require.NoError(t, w.Sync())

	assert.Equal(t, 1, wildcardFired)
}

func TestUnhookStopsDispatch(t *testing.T) {
	w, posId, _, _ := newTestWorld(t)

	var fired int
	h := w.Hook(posId, ecs.HookCallbacks{
		OnSet: func(_ *ecs.World, _ ecs.Id, _ any) { fired++ },
	})

	e := w.Spawn()
	require.NoError(t, w.Set(e, posId, Position{X: 1}))
	require.NoError(t, w.Sync())
	assert.Equal(t, 1, fired)

	w.Unhook(h)
	require.NoError(t, w.Set(e, posId, Position{X: 2}))
	require.NoError(t, w.Sync())
	assert.Equal(t, 1, fired, "unhooked callback must not fire again")
}

func TestMultiHookFiresOnSatisfyAndOnLoss(t *testing.T) {
	w, posId, velId, _ := newTestWorld(t)

	var satisfied, lost int
	w.HookMulti([]ecs.Id{posId, velId}, nil, ecs.MultiHookCallbacks{
		OnSet:    func(_ *ecs.World, _ ecs.Id, _ map[ecs.Id]any) { satisfied++ },
		OnRemove: func(_ *ecs.World, _ ecs.Id, _ map[ecs.Id]any) { lost++ },
	})

	e := w.Spawn()
	require.NoError(t, w.Set(e, posId, Position{X: 1}))
	require.NoError(t, w.Sync())
	assert.Equal(t, 0, satisfied, "only one of two required types is present")

	require.NoError(t, w.Set(e, velId, Velocity{X: 1}))
	require.NoError(t, w.Sync())
	assert.Equal(t, 1, satisfied)

	require.NoError(t, w.Remove(e, velId))
	require.NoError(t, w.Sync())
	assert.Equal(t, 1, lost)
}

// A hook that keeps re-enqueueing past its target trips the command
// buffer's fixed-point bound.
func TestHookFixedPointBound(t *testing.T) {
	w := ecs.New()
	counterId, err := w.Component(ecs.ComponentOptions{Name: "Counter"})
	require.NoError(t, err)

	w.Hook(counterId, ecs.HookCallbacks{
		OnSet: func(world *ecs.World, e ecs.Id, v any) {
			n := v.(Counter).N
			if n < 200 {
				_ = world.Set(e, counterId, Counter{N: n + 1})
			}
		},
	})

	e := w.Spawn()
	require.NoError(t, w.Set(e, counterId, Counter{N: 0}))

	err = w.Sync()
	assert.ErrorIs(t, err, ecs.ErrCommandLoopExceeded)
}
