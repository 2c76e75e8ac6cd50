package ecs

import (
	"errors"
	"reflect"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
)

var (
	// ErrEntityNotFound is returned when an operation targets an entity that doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrInvalidComponent is returned when a value can't be stored as the component type it claims to be.
	ErrInvalidComponent = errors.New("invalid component")
)

// Storage is the component store: it maps entity ids to sets of typed components.
// All methods are safe for concurrent use; EntitySets only observe the store when polled.
type Storage struct {
	mu       sync.RWMutex
	registry *ComponentRegistry
	storages map[reflect.Type]iComponentStorage

	generations []uint32
	alive       []bool
	freeSlots   []uint32
	count       int

	// version is bumped on every mutation; component writes stamp it on the written slot
	version uint64

	sets       map[*EntitySet]struct{}
	singletons map[reflect.Type]*singletonEntry
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		storages:   make(map[reflect.Type]iComponentStorage),
		sets:       make(map[*EntitySet]struct{}),
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry backing this storage.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Batch runs fn with exclusive access to the storage. No EntitySet can poll
// while fn runs, so every mutation made through tx becomes visible at once.
// Mutations applied before fn returns an error are kept.
func (s *Storage) Batch(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

// CreateEntity allocates a new entity without components.
func (s *Storage) CreateEntity() EntityId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEntity()
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawn(components)
}

// SetComponent attaches a component to an entity, replacing any existing component of the same type.
func (s *Storage) SetComponent(id EntityId, component any) error {
	return s.SetComponents(id, component)
}

// SetComponents attaches all components to the entity in one step.
// Either every component is written or, on error, none is.
func (s *Storage) SetComponents(id EntityId, components ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setComponents(id, components)
}

// RemoveComponent detaches the component of the given type from the entity.
// Returns false if the entity doesn't exist or doesn't have the component.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeComponent(id, compType)
}

// RemoveEntity removes all data related to the entity ID
func (s *Storage) RemoveEntity(id EntityId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeEntity(id)
}

// GetComponent returns the component for the given entity ID and component type
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getComponent(id, compType)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists(id) {
		return false
	}
	storage, ok := s.storages[compType]
	return ok && storage.Has(id.Index())
}

// Exists reports whether the entity is alive.
func (s *Storage) Exists(id EntityId) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists(id)
}

// Count returns the number of live entities.
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Version returns the current store version. It increases with every mutation.
func (s *Storage) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Entities returns the ids of all live entities in slot order.
func (s *Storage) Entities() []EntityId {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]EntityId, 0, s.count)
	for index, alive := range s.alive {
		if alive {
			ids = append(ids, NewEntityId(s.generations[index], uint32(index)))
		}
	}
	return ids
}

// ComponentTypes returns the component types attached to the entity, sorted by name.
func (s *Storage) ComponentTypes(id EntityId) []reflect.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.exists(id) {
		return nil
	}

	types := make([]reflect.Type, 0, 4)
	for t, storage := range s.storages {
		if storage.Has(id.Index()) {
			types = append(types, t)
		}
	}
	sort.Sort(byTypeName(types))
	return types
}

// GetEntities returns a started EntitySet over all entities having every one of the given types.
func (s *Storage) GetEntities(types ...reflect.Type) *EntitySet {
	set := NewEntitySet(s, types...)
	set.Start()
	return set
}

// Close releases every EntitySet still attached to the storage.
func (s *Storage) Close() {
	s.mu.Lock()
	sets := make([]*EntitySet, 0, len(s.sets))
	for set := range s.sets {
		sets = append(sets, set)
	}
	s.mu.Unlock()

	for _, set := range sets {
		set.Release()
	}
}

func (s *Storage) attachSet(set *EntitySet) {
	s.mu.Lock()
	s.sets[set] = struct{}{}
	s.mu.Unlock()
}

func (s *Storage) detachSet(set *EntitySet) {
	s.mu.Lock()
	delete(s.sets, set)
	s.mu.Unlock()
}

func (s *Storage) exists(id EntityId) bool {
	index := id.Index()
	if int(index) >= len(s.alive) {
		return false
	}
	return s.alive[index] && s.generations[index] == id.Generation()
}

func (s *Storage) createEntity() EntityId {
	var index uint32
	if len(s.freeSlots) > 0 {
		index = s.freeSlots[len(s.freeSlots)-1]
		s.freeSlots = s.freeSlots[:len(s.freeSlots)-1]
	} else {
		index = uint32(len(s.alive))
		s.alive = append(s.alive, false)
		s.generations = append(s.generations, 0)
	}

	// Generations start at 1 so that a zero EntityId is never valid
	s.generations[index]++
	s.alive[index] = true
	s.count++
	return NewEntityId(s.generations[index], index)
}

func (s *Storage) spawn(components []any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}
	for _, component := range components {
		if component == nil {
			panic("cannot spawn entity with a nil component")
		}
		s.storageFor(componentType(component))
	}

	id := s.createEntity()
	if err := s.setComponents(id, components); err != nil {
		panic(err.Error())
	}
	return id
}

// storageFor returns the storage for a component type, creating it on first use.
func (s *Storage) storageFor(compType reflect.Type) iComponentStorage {
	storage, ok := s.storages[compType]
	if ok {
		return storage
	}

	factory := s.registry.getFactory(compType)
	if factory == nil {
		panic("component type " + compType.String() + " not registered")
	}

	storage = factory()
	s.storages[compType] = storage
	return storage
}

func (s *Storage) setComponents(id EntityId, components []any) error {
	if !s.exists(id) {
		return eris.Wrapf(ErrEntityNotFound, "set components on %s", id)
	}

	// Resolve every storage first so that an unregistered type leaves the entity untouched
	storages := make([]iComponentStorage, len(components))
	for i, component := range components {
		if component == nil {
			return eris.Wrapf(ErrInvalidComponent, "nil component for %s", id)
		}
		storages[i] = s.storageFor(componentType(component))
	}

	for i, component := range components {
		s.version++
		if !storages[i].Set(id.Index(), component, s.version) {
			return eris.Wrapf(ErrInvalidComponent, "%T for %s", component, id)
		}
	}
	return nil
}

func (s *Storage) removeComponent(id EntityId, compType reflect.Type) bool {
	if !s.exists(id) {
		return false
	}

	storage, ok := s.storages[compType]
	if !ok || !storage.Delete(id.Index()) {
		return false
	}
	s.version++
	return true
}

func (s *Storage) removeEntity(id EntityId) bool {
	if !s.exists(id) {
		return false
	}

	index := id.Index()
	for _, storage := range s.storages {
		storage.Delete(index)
	}

	s.alive[index] = false
	s.freeSlots = append(s.freeSlots, index)
	s.count--
	s.version++
	return true
}

func (s *Storage) getComponent(id EntityId, compType reflect.Type) (any, bool) {
	if !s.exists(id) {
		return nil, false
	}

	storage, ok := s.storages[compType]
	if !ok {
		return nil, false
	}
	return storage.Get(id.Index())
}

// Tx gives unsynchronized access to a Storage inside Storage.Batch.
type Tx struct {
	s *Storage
}

// CreateEntity allocates a new entity without components.
func (tx *Tx) CreateEntity() EntityId { return tx.s.createEntity() }

// Spawn creates a new entity with the provided components.
func (tx *Tx) Spawn(components ...any) EntityId { return tx.s.spawn(components) }

// SetComponents attaches all components to the entity.
func (tx *Tx) SetComponents(id EntityId, components ...any) error {
	return tx.s.setComponents(id, components)
}

// RemoveComponent detaches the component of the given type from the entity.
func (tx *Tx) RemoveComponent(id EntityId, compType reflect.Type) bool {
	return tx.s.removeComponent(id, compType)
}

// RemoveEntity removes the entity and all of its components.
func (tx *Tx) RemoveEntity(id EntityId) bool { return tx.s.removeEntity(id) }

// GetComponent returns the component for the given entity ID and component type.
func (tx *Tx) GetComponent(id EntityId, compType reflect.Type) (any, bool) {
	return tx.s.getComponent(id, compType)
}

// Exists reports whether the entity is alive.
func (tx *Tx) Exists(id EntityId) bool { return tx.s.exists(id) }

// componentType returns the component type of a value, dereferencing pointers.
func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}
	checkComponentKind(compType)
	return compType
}

// Components can be structs or primitives (int, string, etc.)
// But not pointers, maps, channels, or functions (those aren't value types)
func checkComponentKind(compType reflect.Type) {
	if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
		compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
		panic("components cannot be pointers, maps, channels, or functions")
	}
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) (any, bool)
}

// Get reads a component of type T for the entity.
func Get[T any](reader ComponentReader, entityId EntityId) (T, bool) {
	c, ok := reader.GetComponent(entityId, reflect.TypeFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return c.(T), true
}

// TypeOf returns the component type key for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
