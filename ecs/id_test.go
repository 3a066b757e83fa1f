package ecs_test

import (
	"testing"

	"github.com/plus3/archecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	position := ecs.Id(1)
	entity := ecs.Id(1024)

	entityRel, err := ecs.Relation(position, entity)
	require.NoError(t, err)
	componentRel, err := ecs.Relation(position, ecs.Id(2))
	require.NoError(t, err)
	wildcardRel, err := ecs.Relation(position, ecs.Wildcard)
	require.NoError(t, err)

	tests := []struct {
		name string
		id   ecs.Id
		want ecs.IdKind
	}{
		{"zero", 0, ecs.KindInvalid},
		{"component", position, ecs.KindComponent},
		{"max component", ecs.MaxComponentId, ecs.KindComponent},
		{"entity", entity, ecs.KindEntity},
		{"entity relation", entityRel, ecs.KindEntityRelation},
		{"component relation", componentRel, ecs.KindComponentRelation},
		{"wildcard relation", wildcardRel, ecs.KindWildcardRelation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ecs.Classify(tt.id))
		})
	}
}

func TestRelationRoundTrip(t *testing.T) {
	rel, err := ecs.Relation(ecs.Id(7), ecs.Id(2000))
	require.NoError(t, err)

	assert.Equal(t, ecs.Id(7), ecs.ComponentIdOf(rel))
	assert.Equal(t, ecs.Id(2000), ecs.TargetOf(rel))
	assert.True(t, ecs.IsRelation(rel))
	assert.False(t, ecs.IsWildcard(rel))

	wildcard := ecs.WildcardOf(rel)
	assert.Equal(t, ecs.KindWildcardRelation, ecs.Classify(wildcard))
	assert.Equal(t, ecs.Id(7), ecs.ComponentIdOf(wildcard))
}

func TestRelationRejectsInvalidComponent(t *testing.T) {
	_, err := ecs.Relation(0, ecs.Id(1024))
	assert.ErrorIs(t, err, ecs.ErrInvalidId)

	_, err = ecs.Relation(ecs.MaxComponentId+1, ecs.Id(1024))
	assert.ErrorIs(t, err, ecs.ErrInvalidId)
}

func TestRelationRejectsNegativeTarget(t *testing.T) {
	_, err := ecs.Relation(ecs.Id(1), -5)
	assert.ErrorIs(t, err, ecs.ErrInvalidId)
}

func TestWildcardOfInvalidIdIsZero(t *testing.T) {
	assert.Equal(t, ecs.Id(0), ecs.WildcardOf(0))
}
