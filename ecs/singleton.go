package ecs

import (
	"reflect"
)

type singletonEntry struct {
	// data holds a *T
	data any
}

// Singleton provides access to a single resource instance that is not
// associated with any entity. Use this for global game state,
// configuration, or other singleton data. Each Storage has its own slots.
type Singleton[T any] struct {
	storage       *Storage
	componentType reflect.Type
	cached        *T
}

// NewSingleton creates a new Singleton accessor for the given storage.
// If initializer is provided and the singleton doesn't exist in storage,
// it will be created with the initializer value. Otherwise, a zero value is used.
// This guarantees the singleton exists in storage after the call.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	s := &Singleton[T]{}
	s.Init(storage)

	if !s.Exists() {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		s.Set(value)
	}
	return s
}

// Init initializes the Singleton with a storage reference.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.componentType = reflect.TypeFor[T]()
	s.cached = nil
	s.updateCache()
}

// Get returns a pointer to the singleton value.
// Returns nil if the singleton has not been added to storage.
func (s *Singleton[T]) Get() *T {
	if s.cached == nil {
		s.updateCache()
	}
	return s.cached
}

// Set replaces the singleton value, creating the slot if needed.
func (s *Singleton[T]) Set(value T) {
	s.storage.mu.Lock()
	defer s.storage.mu.Unlock()

	entry, ok := s.storage.singletons[s.componentType]
	if !ok {
		entry = &singletonEntry{data: new(T)}
		s.storage.singletons[s.componentType] = entry
	}
	ptr := entry.data.(*T)
	*ptr = value
	s.cached = ptr
}

// updateCache refreshes the cached pointer from storage
func (s *Singleton[T]) updateCache() {
	if s.storage == nil {
		return
	}

	s.storage.mu.RLock()
	entry, ok := s.storage.singletons[s.componentType]
	s.storage.mu.RUnlock()

	if ok {
		s.cached = entry.data.(*T)
	}
}

// Exists returns true if the singleton has been added to storage
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

// ReadSingleton sets *out to the singleton of the pointed-to type.
// out must be a **T. Returns false if the singleton has not been added.
func (s *Storage) ReadSingleton(out any) bool {
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Ptr || target.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton requires a pointer to a pointer")
	}

	s.mu.RLock()
	entry, ok := s.singletons[target.Elem().Type().Elem()]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	target.Elem().Set(reflect.ValueOf(entry.data))
	return true
}
