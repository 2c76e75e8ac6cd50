package ecs_test

import (
	"fmt"

	"github.com/plus3/impstack/ecs"
)

type SimClock struct {
	Paused bool
	Scale  float64
}

type AttachBudget struct {
	PerTick int
}

// ExampleNewSingleton creates a resource that belongs to the store rather than
// to an entity. Every accessor of the same type shares one slot.
func ExampleNewSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	clock := ecs.NewSingleton(storage, SimClock{Scale: 1})
	fmt.Printf("scale %.1f paused %v\n", clock.Get().Scale, clock.Get().Paused)

	clock.Set(SimClock{Scale: 0.5, Paused: true})

	// The initializer is ignored once the slot exists.
	again := ecs.NewSingleton(storage, SimClock{Scale: 4})
	fmt.Printf("scale %.1f paused %v\n", again.Get().Scale, again.Get().Paused)

	// Output:
	// scale 1.0 paused false
	// scale 0.5 paused true
}

// ExampleSingleton_fields shows a system reading a singleton field that the
// scheduler initializes at registration.
func ExampleSingleton_fields() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	ecs.NewSingleton(storage, AttachBudget{PerTick: 2})

	system := &budgetReporter{}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(system)
	scheduler.Once(0.016)

	ecs.NewSingleton[AttachBudget](storage).Set(AttachBudget{PerTick: 5})
	scheduler.Once(0.016)

	// Output:
	// tick 1: budget 2
	// tick 2: budget 5
}

type budgetReporter struct {
	Budget ecs.Singleton[AttachBudget]
}

func (s *budgetReporter) Execute(frame *ecs.UpdateFrame) {
	fmt.Printf("tick %d: budget %d\n", frame.Tick, s.Budget.Get().PerTick)
}

// ExampleStorage_ReadSingleton reads a singleton outside of a system.
func ExampleStorage_ReadSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	ecs.NewSingleton(storage, SimClock{Scale: 2})

	var clock *SimClock
	if storage.ReadSingleton(&clock) {
		fmt.Printf("scale %.1f\n", clock.Scale)
	}

	var budget *AttachBudget
	fmt.Println("budget present:", storage.ReadSingleton(&budget))

	// Output:
	// scale 2.0
	// budget present: false
}
