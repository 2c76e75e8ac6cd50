// Package es provides the entity components and systems that drive the scene:
// model resolution and placement, timed entity expiry and delayed components.
package es

import (
	"fmt"
	"slices"
	"time"

	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/scene"
)

// Model names the visual model of an entity.
type Model struct {
	Id string
}

func (m Model) String() string {
	return fmt.Sprintf("Model{%s}", m.Id)
}

// Position places an entity in the scene.
type Position struct {
	Location scene.Vec3
	Rotation scene.Quat
}

// NewPosition returns a position at loc with identity rotation.
func NewPosition(loc scene.Vec3) Position {
	return Position{Location: loc, Rotation: scene.IdentityQuat()}
}

func (p Position) String() string {
	return fmt.Sprintf("Position{%s, %s}", p.Location, p.Rotation)
}

// Decay marks an entity for removal once Duration has passed since Start.
type Decay struct {
	Start    time.Time
	Duration time.Duration
}

func NewDecay(now time.Time, duration time.Duration) Decay {
	return Decay{Start: now, Duration: duration}
}

func (d Decay) Expiry() time.Time {
	return d.Start.Add(d.Duration)
}

func (d Decay) IsExpired(now time.Time) bool {
	return !now.Before(d.Expiry())
}

// Remaining returns the time left before expiry, never negative.
func (d Decay) Remaining(now time.Time) time.Duration {
	return max(0, d.Expiry().Sub(now))
}

// PercentRemaining returns the remaining fraction of the duration in [0, 1].
func (d Decay) PercentRemaining(now time.Time) float64 {
	if d.Duration <= 0 || d.IsExpired(now) {
		return 0
	}
	return min(1, float64(d.Remaining(now))/float64(d.Duration))
}

func (d Decay) String() string {
	return fmt.Sprintf("Decay{start=%s, duration=%s}", d.Start.Format(time.RFC3339Nano), d.Duration)
}

// Delay holds components that are set on the entity once Duration has passed
// since Start. The Delay itself is removed at the same time.
type Delay struct {
	Start      time.Time
	Duration   time.Duration
	Components []any
}

func NewDelay(now time.Time, duration time.Duration, components ...any) Delay {
	return Delay{Start: now, Duration: duration, Components: slices.Clone(components)}
}

func (d Delay) IsExpired(now time.Time) bool {
	return !now.Before(d.Start.Add(d.Duration))
}

func (d Delay) String() string {
	return fmt.Sprintf("Delay{components=%v, duration=%s}", d.Components, d.Duration)
}

// RegisterComponents registers Model, Position, Decay and Delay.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Model](registry)
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Decay](registry)
	ecs.RegisterComponent[Delay](registry)
}
