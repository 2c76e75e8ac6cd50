package ecs_test

import (
	"testing"

	"github.com/plus3/impstack/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{X: 1}, Velocity{DX: 1})
	b := storage.Spawn(Position{X: 2}, Velocity{DX: 2})
	storage.Spawn(Position{X: 3})

	query := ecs.NewQuery[struct {
		*Position
		*Velocity
	}](storage)

	t.Run("iter before execute panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "Query.Iter() called before Query.Execute()", func() {
			query.Iter()
		})
		assert.PanicsWithValue(t, "Query.Values() called before Query.Execute()", func() {
			query.Values()
		})
	})

	t.Run("first execute reports initial members as added", func(t *testing.T) {
		query.Execute()
		assert.Equal(t, 2, query.Len())
		assert.Equal(t, []ecs.EntityId{a, b}, ids(query.Added()))

		var got []ecs.EntityId
		for id, item := range query.Iter() {
			got = append(got, id)
			assert.Equal(t, item.Position.X, item.Velocity.DX)
		}
		assert.Equal(t, []ecs.EntityId{a, b}, got)
	})

	t.Run("changes between executes", func(t *testing.T) {
		require.NoError(t, storage.SetComponent(a, Velocity{DX: 9}))
		storage.RemoveComponent(b, velocityType)
		c := storage.Spawn(Position{X: 4}, Velocity{DX: 4})

		query.Execute()
		assert.Equal(t, []ecs.EntityId{c}, ids(query.Added()))
		assert.Equal(t, []ecs.EntityId{a}, ids(query.Changed()))
		assert.Equal(t, []ecs.EntityId{b}, ids(query.Removed()))

		total := float32(0)
		for item := range query.Values() {
			total += item.Velocity.DX
		}
		assert.Equal(t, float32(13), total)
	})

	t.Run("release", func(t *testing.T) {
		query.Release()
		assert.Panics(t, func() { query.Iter() })
		assert.Panics(t, func() { query.Execute() })
	})
}

func TestQueryOptionalFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{X: 1}, Name{Value: "one"})
	storage.Spawn(Position{X: 2})

	query := ecs.NewQuery[struct {
		*Position
		Name *Name `ecs:"optional"`
	}](storage)
	query.Execute()

	named := 0
	for item := range query.Values() {
		if item.Name != nil {
			named++
		}
	}
	assert.Equal(t, 2, query.Len())
	assert.Equal(t, 1, named)
}
