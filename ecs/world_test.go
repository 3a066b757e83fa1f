package ecs_test

import (
	"testing"

	"github.com/plus3/archecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) (*ecs.World, ecs.Id, ecs.Id, ecs.Id) {
	t.Helper()
	w := ecs.New()
	posId, err := w.Component(ecs.ComponentOptions{Name: "Position"})
	require.NoError(t, err)
	velId, err := w.Component(ecs.ComponentOptions{Name: "Velocity"})
	require.NoError(t, err)
	hpId, err := w.Component(ecs.ComponentOptions{Name: "Health"})
	require.NoError(t, err)
	return w, posId, velId, hpId
}

// Basic query over Position/Velocity/Health.
func TestBasicQuery(t *testing.T) {
	w, posId, velId, hpId := newTestWorld(t)

	e1 := w.Spawn()
	e2 := w.Spawn()
	e3 := w.Spawn()

	require.NoError(t, w.Set(e1, posId, Position{X: 1}))
	require.NoError(t, w.Set(e1, velId, Velocity{X: 1}))
	require.NoError(t, w.Set(e2, posId, Position{X: 2}))
	require.NoError(t, w.Sync())

	assert.ElementsMatch(t, []ecs.Id{e1, e2}, w.Query([]ecs.Id{posId}))
	assert.ElementsMatch(t, []ecs.Id{e1}, w.Query([]ecs.Id{posId, velId}))
	assert.Empty(t, w.Query([]ecs.Id{hpId}))
	_ = e3
}

// A negative filter excludes entities carrying the excluded type.
func TestNegativeFilter(t *testing.T) {
	w, posId, velId, hpId := newTestWorld(t)

	e1 := w.Spawn()
	e2 := w.Spawn()
	require.NoError(t, w.Set(e1, posId, Position{X: 1}))
	require.NoError(t, w.Set(e1, velId, Velocity{X: 1}))
	require.NoError(t, w.Set(e2, posId, Position{X: 2}))
	require.NoError(t, w.Set(e2, hpId, Health{Current: 10, Max: 10}))
	require.NoError(t, w.Sync())

	q := w.CreateQuery([]ecs.Id{posId}, []ecs.Id{hpId})
	defer q.Release()

	got, err := q.Entities()
	require.NoError(t, err)
	assert.Equal(t, []ecs.Id{e1}, got)
}

func TestHasGetOptional(t *testing.T) {
	w, posId, _, hpId := newTestWorld(t)
	e := w.Spawn()
	require.NoError(t, w.Set(e, posId, Position{X: 3, Y: 4}))
	require.NoError(t, w.Sync())

	assert.True(t, w.Has(e, posId))
	assert.False(t, w.Has(e, hpId))

	v, ok := w.GetOptional(e, posId)
	assert.True(t, ok)
	assert.Equal(t, Position{X: 3, Y: 4}, v)

	_, ok = w.GetOptional(e, hpId)
	assert.False(t, ok)
}

func TestGetUnknownComponentFails(t *testing.T) {
	w, posId, _, _ := newTestWorld(t)
	e := w.Spawn()
	require.NoError(t, w.Sync())

	_, err := w.Get(e, posId)
	assert.ErrorIs(t, err, ecs.ErrUnknownComponent)
}

func TestSetOnUnknownEntityFails(t *testing.T) {
	w, posId, _, _ := newTestWorld(t)
	err := w.Set(9999, posId, Position{})
	assert.ErrorIs(t, err, ecs.ErrUnknownEntity)
}

func TestSetWildcardRelationFails(t *testing.T) {
	w := ecs.New()
	tagId, err := w.Component(ecs.ComponentOptions{Name: "Tag"})
	require.NoError(t, err)
	e := w.Spawn()
	require.NoError(t, w.Sync())

	wildcard, err := w.Relation(tagId, ecs.Wildcard)
	require.NoError(t, err)

	err = w.Set(e, wildcard, 1)
	assert.ErrorIs(t, err, ecs.ErrIllegalWildcardWrite)
}

// Idempotent set law: repeating an identical set/sync leaves
// the entity's observable state unchanged.
func TestIdempotentSet(t *testing.T) {
	w, posId, _, _ := newTestWorld(t)
	e := w.Spawn()

	require.NoError(t, w.Set(e, posId, Position{X: 1, Y: 2}))
	require.NoError(t, w.Sync())
	first, _ := w.GetOptional(e, posId)

	require.NoError(t, w.Set(e, posId, Position{X: 1, Y: 2}))
	require.NoError(t, w.Sync())
	second, _ := w.GetOptional(e, posId)

	assert.Equal(t, first, second)
}

// Round-trip law: set then remove in the same batch is a no-op.
func TestSetThenRemoveIsNoOp(t *testing.T) {
	w, posId, _, _ := newTestWorld(t)
	e := w.Spawn()
	require.NoError(t, w.Sync())

	require.NoError(t, w.Set(e, posId, Position{X: 9, Y: 9}))
	require.NoError(t, w.Remove(e, posId))
	require.NoError(t, w.Sync())

	assert.False(t, w.Has(e, posId))
}

func TestDeleteIsIdempotent(t *testing.T) {
	w, _, _, _ := newTestWorld(t)
	e := w.Spawn()
	require.NoError(t, w.Sync())

	require.NoError(t, w.Delete(e))
	require.NoError(t, w.Sync())
	assert.False(t, w.Exists(e))

	// Deleting again, and deleting a never-allocated id, are no-ops.
	require.NoError(t, w.Delete(e))
	require.NoError(t, w.Delete(99999))
	require.NoError(t, w.Sync())
}

func TestDuplicateComponentNameFails(t *testing.T) {
	w := ecs.New()
	_, err := w.Component(ecs.ComponentOptions{Name: "Position"})
	require.NoError(t, err)
	_, err = w.Component(ecs.ComponentOptions{Name: "Position"})
	assert.ErrorIs(t, err, ecs.ErrDuplicateComponentName)
}

func TestOutOfComponentIds(t *testing.T) {
	w := ecs.New()
	var lastErr error
	for i := 0; i < int(ecs.MaxComponentId)+1; i++ {
		_, lastErr = w.Component(ecs.ComponentOptions{})
	}
	assert.ErrorIs(t, lastErr, ecs.ErrOutOfComponentIds)
}

func TestEntityIdsAreRecycled(t *testing.T) {
	w, _, _, _ := newTestWorld(t)
	e1 := w.Spawn()
	require.NoError(t, w.Sync())
	require.NoError(t, w.Delete(e1))
	require.NoError(t, w.Sync())

	e2 := w.Spawn()
	assert.Equal(t, e1, e2)
}
