package ecs_test

import (
	"fmt"

	"github.com/plus3/impstack/ecs"
)

// ExampleView demonstrates using Views for flexible entity lookups and spawning.
// Views don't require a Scheduler and read the storage on demand, making them
// ideal for one-off queries, tools, or code outside of a system.
func ExampleView() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	player := storage.Spawn(
		Position{X: 10, Y: 20},
		Velocity{DX: 1, DY: 0},
		Health{Current: 100, Max: 100},
	)

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	if item := view.Get(player); item != nil {
		fmt.Printf("Player at (%.0f, %.0f) moving (%.0f, %.0f)\n",
			item.Position.X, item.Position.Y, item.Velocity.DX, item.Velocity.DY)
	}

	// Output:
	// Player at (10, 20) moving (1, 0)
}

// ExampleView_optional shows optional fields, which are nil when the entity
// doesn't carry the component.
func ExampleView_optional() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	tree := storage.Spawn(Position{X: 5, Y: 5})
	orc := storage.Spawn(Position{X: 9, Y: 1}, Health{Current: 30, Max: 30})

	view := ecs.NewView[struct {
		*Position
		Health *Health `ecs:"optional"`
	}](storage)

	for _, id := range []ecs.EntityId{tree, orc} {
		item := view.Get(id)
		if item.Health == nil {
			fmt.Printf("(%.0f, %.0f) is scenery\n", item.Position.X, item.Position.Y)
		} else {
			fmt.Printf("(%.0f, %.0f) has %d hp\n", item.Position.X, item.Position.Y, item.Health.Current)
		}
	}

	// Output:
	// (5, 5) is scenery
	// (9, 1) has 30 hp
}
