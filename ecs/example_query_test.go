package ecs_test

import (
	"fmt"

	"github.com/plus3/impstack/ecs"
)

// ExampleQuery demonstrates using queries for per-frame iteration.
// A Query owns an EntitySet, so Execute only rescans the storage when
// something changed and also reports what was added, changed and removed.
func ExampleQuery() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Position{X: 0, Y: 0}, Velocity{DX: 1, DY: 0})
	storage.Spawn(Position{X: 10, Y: 10}, Velocity{DX: 0, DY: 1}, Health{Current: 100, Max: 100})
	storage.Spawn(Position{X: 20, Y: 20}, Velocity{DX: -1, DY: -1})

	query := ecs.NewQuery[struct {
		*Position
		*Velocity
	}](storage)
	query.Execute()

	fmt.Println("Moving entities:")
	for item := range query.Values() {
		newX := item.Position.X + item.Velocity.DX
		newY := item.Position.Y + item.Velocity.DY
		fmt.Printf("Position (%.0f, %.0f) -> (%.0f, %.0f)\n", item.Position.X, item.Position.Y, newX, newY)
	}
	fmt.Println("Added this frame:", len(query.Added()))

	// Output:
	// Moving entities:
	// Position (0, 0) -> (1, 0)
	// Position (10, 10) -> (10, 11)
	// Position (20, 20) -> (19, 19)
	// Added this frame: 3
}
