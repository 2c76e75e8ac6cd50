package app

import (
	"context"
	"sync"
	"time"

	"github.com/plus3/impstack/ecs"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type SystemsOption func(*SystemsState)

// WithSystems registers systems with the state's scheduler.
func WithSystems(systems ...ecs.System) SystemsOption {
	return func(s *SystemsState) {
		s.systems = append(s.systems, systems...)
	}
}

// InBackground runs the scheduler on its own goroutine at the given rate while
// the state is enabled. A zero rate uses the configured tick rate.
func InBackground(rate time.Duration) SystemsOption {
	return func(s *SystemsState) {
		s.background = true
		s.rate = rate
	}
}

// WithClock sets the clock handed to the scheduler.
func WithClock(clock func() time.Time) SystemsOption {
	return func(s *SystemsState) {
		s.clock = clock
	}
}

// SystemsState runs an ecs.Scheduler. In the foreground every Update runs one
// tick; in the background a goroutine ticks at a fixed rate until the state is
// disabled.
type SystemsState struct {
	systems    []ecs.System
	background bool
	rate       time.Duration
	clock      func() time.Time

	scheduler *ecs.Scheduler
	logger    zerolog.Logger

	mu    sync.Mutex
	queue []func()

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewSystemsState(opts ...SystemsOption) *SystemsState {
	s := &SystemsState{clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SystemsState) Initialize(ctx *Context) error {
	s.logger = ctx.Logger.With().Str("component", "systems").Logger()
	if s.rate <= 0 {
		s.rate = ctx.Config.Tick.Rate
	}

	s.scheduler = ecs.NewScheduler(ctx.Storage, ecs.WithClock(s.clock), ecs.WithLogger(s.logger))
	for _, system := range s.systems {
		s.scheduler.Register(system)
	}
	return s.scheduler.Start()
}

func (s *SystemsState) OnEnable() error {
	if !s.background {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group, ctx = errgroup.WithContext(ctx)
	s.group.Go(func() error {
		s.loop(ctx)
		return nil
	})
	s.logger.Debug().Dur("rate", s.rate).Msg("background loop started")
	return nil
}

func (s *SystemsState) loop(ctx context.Context) {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	last := s.clock()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.clock()
			s.tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

func (s *SystemsState) tick(dt float64) {
	s.mu.Lock()
	queued := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
	s.scheduler.Once(dt)
}

func (s *SystemsState) Update(tpf float64) error {
	if !s.background {
		s.tick(tpf)
	}
	return nil
}

func (s *SystemsState) OnDisable() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	_ = s.group.Wait()
	s.cancel = nil
	s.group = nil
	s.logger.Debug().Msg("background loop stopped")
}

func (s *SystemsState) Cleanup() {
	s.scheduler.Stop()
}

// Enqueue runs fn on the tick goroutine before the next tick's systems.
func (s *SystemsState) Enqueue(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Attach adds a system. Once the state is initialized the system joins at the
// start of the next tick, after its Initialize hook runs.
func (s *SystemsState) Attach(system ecs.System) {
	if s.scheduler == nil {
		s.systems = append(s.systems, system)
		return
	}
	s.Enqueue(func() {
		if initializer, ok := system.(ecs.Initializer); ok {
			if err := initializer.Initialize(s.scheduler.Storage()); err != nil {
				s.logger.Error().Err(err).Msg("attach system")
				return
			}
		}
		s.scheduler.Register(system)
	})
}

// Scheduler returns the scheduler, or nil before Initialize.
func (s *SystemsState) Scheduler() *ecs.Scheduler {
	return s.scheduler
}
