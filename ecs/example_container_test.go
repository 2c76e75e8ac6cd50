package ecs_test

import (
	"fmt"
	"reflect"

	"github.com/plus3/impstack/ecs"
)

type label struct {
	text string
}

type labelCallbacks struct{}

func (labelCallbacks) Add(e ecs.Entity) (*label, error) {
	name := ecs.MustComponent[Name](e)
	fmt.Println("create label", name.Value)
	return &label{text: name.Value}, nil
}

func (labelCallbacks) Update(l *label, e ecs.Entity) error {
	l.text = ecs.MustComponent[Name](e).Value
	fmt.Println("rename label", l.text)
	return nil
}

func (labelCallbacks) Remove(l *label, e ecs.Entity) {
	fmt.Println("drop label", l.text)
}

// ExampleEntityContainer keeps one label object per named entity.
func ExampleEntityContainer() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Name](registry)
	storage := ecs.NewStorage(registry)

	hero := storage.Spawn(Name{Value: "hero"})

	labels := ecs.NewEntityContainer[*label](storage, labelCallbacks{}, reflect.TypeOf(Name{}))
	_ = labels.Start()

	_ = storage.SetComponent(hero, Name{Value: "champion"})
	storage.Spawn(Name{Value: "sidekick"})
	_, _ = labels.Update()

	storage.RemoveEntity(hero)
	_, _ = labels.Update()
	fmt.Println("labels:", labels.Len())

	labels.Stop()

	// Output:
	// create label hero
	// create label sidekick
	// rename label champion
	// drop label champion
	// labels: 1
	// drop label sidekick
}
