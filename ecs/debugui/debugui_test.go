package debugui_test

import (
	"reflect"
	"testing"

	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/ecs/debugui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct {
	Current int
	Max     int
}

type tag struct {
	Label string
	Stats struct {
		Weight float64
	}
}

func newStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[health](registry)
	ecs.RegisterComponent[tag](registry)
	debugui.RegisterDebugUIComponents(registry)
	return ecs.NewStorage(registry)
}

func TestEntityBrowserRefreshAndFilter(t *testing.T) {
	storage := newStorage()
	a := storage.Spawn(health{Current: 1, Max: 10})
	b := storage.Spawn(tag{Label: "crate"})
	storage.Spawn(health{Current: 2}, tag{Label: "goblin"})

	browser := debugui.NewEntityBrowser(10)
	browser.Refresh(storage)
	require.Len(t, browser.FilteredEntities(), 3)
	assert.Equal(t, a, browser.FilteredEntities()[0].ID)

	browser.SetFilter("TAG")
	assert.Len(t, browser.FilteredEntities(), 2)

	storage.RemoveEntity(b)
	browser.Refresh(storage)
	assert.Len(t, browser.FilteredEntities(), 1)

	browser.SetFilter("")
	assert.Len(t, browser.FilteredEntities(), 2)
}

func TestSetComponentField(t *testing.T) {
	storage := newStorage()
	id := storage.Spawn(health{Current: 3, Max: 10}, tag{Label: "a"})
	set := storage.GetEntities(ecs.TypeOf[health]())
	defer set.Release()
	set.ApplyChanges()

	require.NoError(t, debugui.SetComponentField(storage, id, ecs.TypeOf[health](), []int{0}, int64(7)))
	got, ok := ecs.Get[health](storage, id)
	require.True(t, ok)
	assert.Equal(t, health{Current: 7, Max: 10}, got)

	require.True(t, set.ApplyChanges())
	assert.Len(t, set.Changed(), 1)

	require.NoError(t, debugui.SetComponentField(storage, id, ecs.TypeOf[tag](), []int{1, 0}, float64(2.5)))
	tg, _ := ecs.Get[tag](storage, id)
	assert.Equal(t, 2.5, tg.Stats.Weight)
	assert.Equal(t, "a", tg.Label)
}

func TestSetComponentFieldErrors(t *testing.T) {
	storage := newStorage()
	id := storage.Spawn(health{})

	err := debugui.SetComponentField(storage, id, ecs.TypeOf[tag](), []int{0}, "x")
	assert.ErrorIs(t, err, ecs.ErrEntityNotFound)

	assert.Error(t, debugui.SetComponentField(storage, id, ecs.TypeOf[health](), []int{5}, 1))
	assert.Error(t, debugui.SetComponentField(storage, id, ecs.TypeOf[health](), []int{0}, "seven"))

	got, _ := ecs.Get[health](storage, id)
	assert.Equal(t, health{}, got)
}

func TestEntitySetDebugger(t *testing.T) {
	storage := newStorage()
	storage.Spawn(health{Current: 1})
	both := storage.Spawn(health{Current: 2}, tag{Label: "b"})

	d := debugui.NewEntitySetDebugger()
	assert.Nil(t, d.Set())

	d.Select(storage, ecs.TypeOf[health]())
	require.NotNil(t, d.Set())
	d.Poll()
	added, changed, removed := d.Counts()
	assert.Equal(t, []int{2, 0, 0}, []int{added, changed, removed})

	first := d.Set()
	d.Select(storage, ecs.TypeOf[health](), ecs.TypeOf[tag]())
	assert.True(t, first.Released())
	assert.Len(t, d.Selected(), 2)

	d.Poll()
	require.NoError(t, storage.SetComponent(both, health{Current: 9}))
	d.Poll()
	storage.RemoveEntity(both)
	d.Poll()

	added, changed, removed = d.Counts()
	assert.Equal(t, []int{1, 1, 1}, []int{added, changed, removed})

	d.Select(storage)
	assert.Nil(t, d.Set())
	assert.Equal(t, 0, storage.CollectStats().EntitySetCount)
}

func TestPerformanceStatsRecord(t *testing.T) {
	stats := debugui.NewPerformanceStats(4, nil)
	assert.InDelta(t, 2.5, stats.Record(0.010), 1e-4)
	assert.InDelta(t, 5.0, stats.Record(0.010), 1e-4)
	for range 4 {
		stats.Record(0.020)
	}
	assert.InDelta(t, 20.0, stats.Record(0.020), 1e-4)
}

func TestFields(t *testing.T) {
	type sample struct {
		Name    string
		hidden  int
		Target  *health
		Nested  tag
		Enabled bool
	}

	fields := debugui.Fields(reflect.TypeFor[sample]())
	require.Len(t, fields, 4)
	assert.Equal(t, "Name", fields[0].Name)
	assert.Equal(t, 2, fields[1].Index)
	assert.True(t, fields[1].IsPointer)
	assert.Equal(t, reflect.TypeFor[health](), fields[1].Type)
	assert.Same(t, &fields[0], &debugui.Fields(reflect.TypeFor[sample]())[0])

	assert.Nil(t, debugui.Fields(reflect.TypeFor[int]()))
}
