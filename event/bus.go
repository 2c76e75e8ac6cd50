// Package event is a synchronous, in-process publish/subscribe bus keyed by
// event type.
package event

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Subscription identifies a listener registered on a Bus.
type Subscription struct {
	id        string
	eventType reflect.Type
	bus       *Bus
}

// ID returns the unique subscription id.
func (s Subscription) ID() string { return s.id }

// EventType returns the subscribed type, or nil for SubscribeAll.
func (s Subscription) EventType() reflect.Type { return s.eventType }

// Cancel removes the listener. It reports whether the listener was still registered.
func (s Subscription) Cancel() bool {
	if s.bus == nil {
		return false
	}
	return s.bus.Unsubscribe(s)
}

type listener struct {
	id string
	fn func(any)
}

// Bus delivers published events to the listeners of the event's dynamic type.
// Listeners run on the publishing goroutine without the bus lock held, so they
// may subscribe, unsubscribe or publish themselves.
type Bus struct {
	mu        sync.RWMutex
	listeners map[reflect.Type][]listener
	all       []listener
	logger    zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for publication traces.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		listeners: make(map[reflect.Type][]listener),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for events whose dynamic type is exactly T.
func Subscribe[T any](b *Bus, fn func(T)) Subscription {
	t := reflect.TypeFor[T]()
	l := listener{
		id: uuid.NewString(),
		fn: func(ev any) { fn(ev.(T)) },
	}

	b.mu.Lock()
	b.listeners[t] = append(b.listeners[t], l)
	b.mu.Unlock()

	return Subscription{id: l.id, eventType: t, bus: b}
}

// SubscribeAll registers fn for every published event.
func (b *Bus) SubscribeAll(fn func(any)) Subscription {
	l := listener{id: uuid.NewString(), fn: fn}

	b.mu.Lock()
	b.all = append(b.all, l)
	b.mu.Unlock()

	return Subscription{id: l.id, bus: b}
}

// Unsubscribe removes the subscription's listener. It reports whether it was found.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.eventType == nil {
		var ok bool
		b.all, ok = without(b.all, sub.id)
		return ok
	}

	remaining, ok := without(b.listeners[sub.eventType], sub.id)
	if len(remaining) == 0 {
		delete(b.listeners, sub.eventType)
	} else {
		b.listeners[sub.eventType] = remaining
	}
	return ok
}

// without returns a new slice, leaving snapshots held by Publish untouched.
func without(listeners []listener, id string) ([]listener, bool) {
	for i, l := range listeners {
		if l.id == id {
			out := make([]listener, 0, len(listeners)-1)
			out = append(out, listeners[:i]...)
			return append(out, listeners[i+1:]...), true
		}
	}
	return listeners, false
}

// Publish delivers event to the typed listeners, then to the catch-all
// listeners, in subscription order. It returns the number of listeners called.
func (b *Bus) Publish(event any) int {
	if event == nil {
		return 0
	}

	b.mu.RLock()
	typed := b.listeners[reflect.TypeOf(event)]
	all := b.all
	b.mu.RUnlock()

	b.logger.Trace().
		Str("event_type", reflect.TypeOf(event).String()).
		Int("listeners", len(typed)+len(all)).
		Msg("publishing event")

	for _, l := range typed {
		l.fn(event)
	}
	for _, l := range all {
		l.fn(event)
	}
	return len(typed) + len(all)
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.all)
	for _, ls := range b.listeners {
		n += len(ls)
	}
	return n
}
