package app

import (
	"errors"
	"slices"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var (
	ErrStateAttached    = errors.New("state already attached")
	ErrStateNotAttached = errors.New("state not attached")
)

type stateEntry struct {
	state       State
	initialized bool
	enabled     bool
}

// StateManager owns attached states and drives their lifecycle. Lifecycle
// callbacks run without the manager lock held, so a state may attach or
// detach other states from inside them.
type StateManager struct {
	ctx    *Context
	logger zerolog.Logger

	mu     sync.Mutex
	states []*stateEntry
}

func newStateManager(ctx *Context) *StateManager {
	return &StateManager{
		ctx:    ctx,
		logger: ctx.Logger.With().Str("component", "states").Logger(),
	}
}

func (m *StateManager) find(state State) int {
	return slices.IndexFunc(m.states, func(e *stateEntry) bool { return e.state == state })
}

// Attach initializes the state and enables it. If Initialize fails the state
// is not attached; if OnEnable fails it stays attached but disabled.
func (m *StateManager) Attach(state State) error {
	name := stateName(state)

	m.mu.Lock()
	if m.find(state) >= 0 {
		m.mu.Unlock()
		return eris.Wrapf(ErrStateAttached, "attach %s", name)
	}
	entry := &stateEntry{state: state}
	m.states = append(m.states, entry)
	m.mu.Unlock()

	if err := state.Initialize(m.ctx); err != nil {
		m.remove(entry)
		return eris.Wrapf(err, "initialize %s", name)
	}

	m.mu.Lock()
	entry.initialized = true
	m.mu.Unlock()
	m.logger.Debug().Str("state", name).Msg("state initialized")

	if err := state.OnEnable(); err != nil {
		return eris.Wrapf(err, "enable %s", name)
	}

	m.mu.Lock()
	entry.enabled = true
	m.mu.Unlock()
	m.logger.Debug().Str("state", name).Msg("state enabled")
	return nil
}

func (m *StateManager) remove(entry *stateEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = slices.DeleteFunc(m.states, func(e *stateEntry) bool { return e == entry })
}

// Detach disables and cleans up the state. It reports whether the state was attached.
func (m *StateManager) Detach(state State) bool {
	m.mu.Lock()
	i := m.find(state)
	if i < 0 || !m.states[i].initialized {
		m.mu.Unlock()
		return false
	}
	entry := m.states[i]
	m.states = slices.Delete(m.states, i, i+1)
	enabled := entry.enabled
	entry.enabled = false
	m.mu.Unlock()

	name := stateName(state)
	if enabled {
		state.OnDisable()
		m.logger.Debug().Str("state", name).Msg("state disabled")
	}
	state.Cleanup()
	m.logger.Debug().Str("state", name).Msg("state detached")
	return true
}

// SetEnabled switches an attached state on or off. Enabling a state whose
// OnEnable fails leaves it disabled.
func (m *StateManager) SetEnabled(state State, enabled bool) error {
	name := stateName(state)

	m.mu.Lock()
	i := m.find(state)
	if i < 0 || !m.states[i].initialized {
		m.mu.Unlock()
		return eris.Wrapf(ErrStateNotAttached, "set enabled %s", name)
	}
	entry := m.states[i]
	if entry.enabled == enabled {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if enabled {
		if err := state.OnEnable(); err != nil {
			return eris.Wrapf(err, "enable %s", name)
		}
	} else {
		state.OnDisable()
	}

	m.mu.Lock()
	entry.enabled = enabled
	m.mu.Unlock()
	m.logger.Debug().Str("state", name).Bool("enabled", enabled).Msg("state toggled")
	return nil
}

// IsEnabled reports whether the state is attached and enabled.
func (m *StateManager) IsEnabled(state State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(state)
	return i >= 0 && m.states[i].enabled
}

// Update calls Update on every enabled state in attach order. All states are
// updated even if one fails; the errors are joined.
func (m *StateManager) Update(tpf float64) error {
	m.mu.Lock()
	active := make([]State, 0, len(m.states))
	for _, e := range m.states {
		if e.enabled {
			active = append(active, e.state)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, state := range active {
		if err := state.Update(tpf); err != nil {
			errs = append(errs, eris.Wrapf(err, "update %s", stateName(state)))
		}
	}
	return errors.Join(errs...)
}

// States returns the attached states in attach order.
func (m *StateManager) States() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]State, 0, len(m.states))
	for _, e := range m.states {
		if e.initialized {
			out = append(out, e.state)
		}
	}
	return out
}

// Close detaches every state, most recently attached first.
func (m *StateManager) Close() {
	states := m.States()
	for i := len(states) - 1; i >= 0; i-- {
		m.Detach(states[i])
	}
}

// GetState returns the first attached state of type T.
func GetState[T State](m *StateManager) (T, bool) {
	for _, state := range m.States() {
		if s, ok := state.(T); ok {
			return s, true
		}
	}
	var zero T
	return zero, false
}
