package es

import (
	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/log"
	"github.com/rs/zerolog"
)

// DecaySystem removes entities whose Decay has expired.
type DecaySystem struct {
	Entities ecs.Query[struct {
		*Decay
	}]

	logger zerolog.Logger
}

// NewDecaySystem creates a DecaySystem logging under logger.
func NewDecaySystem(logger zerolog.Logger) *DecaySystem {
	return &DecaySystem{logger: log.System(logger, "DecaySystem")}
}

func (s *DecaySystem) Execute(frame *ecs.UpdateFrame) {
	for id, item := range s.Entities.Iter() {
		if item.Decay.IsExpired(frame.Now) {
			frame.Commands.RemoveEntity(id)
			log.EntityId(s.logger.Trace(), id).Stringer("decay", item.Decay).Msg("removing expired entity")
		}
	}
}

// DelaySystem applies the components of expired Delays. Setting the bundled
// components and removing the Delay land in the same command flush, so no
// observer sees one without the other.
type DelaySystem struct {
	Entities ecs.Query[struct {
		*Delay
	}]

	logger zerolog.Logger
}

// NewDelaySystem creates a DelaySystem logging under logger.
func NewDelaySystem(logger zerolog.Logger) *DelaySystem {
	return &DelaySystem{logger: log.System(logger, "DelaySystem")}
}

func (s *DelaySystem) Execute(frame *ecs.UpdateFrame) {
	delayType := ecs.TypeOf[Delay]()
	for id, item := range s.Entities.Iter() {
		delay := item.Delay
		if !delay.IsExpired(frame.Now) {
			continue
		}
		// removals flush before sets, so a bundled Delay replaces this one
		frame.Commands.RemoveComponent(id, delayType)
		if len(delay.Components) > 0 {
			frame.Commands.SetComponents(id, delay.Components...)
		}
		log.EntityId(s.logger.Trace(), id).Int("components", len(delay.Components)).Msg("applying delayed components")
	}
}
