package es

import (
	"github.com/plus3/impstack/app"
	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/log"
	"github.com/rs/zerolog"
)

// EntityDataState owns a component store for the lifetime of the state and
// closes it on Cleanup.
type EntityDataState struct {
	app.BaseState

	storage *ecs.Storage
	logger  zerolog.Logger
}

// NewEntityDataState wraps storage. A nil storage adopts the context's store.
func NewEntityDataState(storage *ecs.Storage) *EntityDataState {
	return &EntityDataState{storage: storage}
}

func (s *EntityDataState) Initialize(ctx *app.Context) error {
	if s.storage == nil {
		s.storage = ctx.Storage
	}
	s.logger = ctx.Logger
	return nil
}

func (s *EntityDataState) Storage() *ecs.Storage {
	return s.storage
}

func (s *EntityDataState) Cleanup() {
	log.Storage(s.logger, zerolog.DebugLevel, s.storage.CollectStats())
	s.storage.Close()
}
