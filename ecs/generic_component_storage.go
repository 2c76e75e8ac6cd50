package ecs

import (
	"iter"
	"reflect"
	"sort"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS systems to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	checkComponentKind(t)
	r.factories[t] = func() iComponentStorage {
		return &genericComponentStorage[T]{}
	}
}

// IsRegistered reports whether the component type has been registered.
func (r *ComponentRegistry) IsRegistered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

// Types returns all registered component types sorted by name.
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// getFactory returns the factory function for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const (
	genericBlockSize = 64
)

// genericComponentStorage is a generic implementation of iComponentStorage.
// It stores components of a specific type `T` in blocks indexed by entity slot,
// together with the store version of the last write to each slot.
type genericComponentStorage[T any] struct {
	blocks   [][genericBlockSize]T
	filled   [][genericBlockSize]bool
	versions [][genericBlockSize]uint64
	count    int
}

// Set stores a component at the given slot, overwriting any previous value.
func (cs *genericComponentStorage[T]) Set(index uint32, item any, version uint64) bool {
	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		return false
	}

	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, [genericBlockSize]T{})
		cs.filled = append(cs.filled, [genericBlockSize]bool{})
		cs.versions = append(cs.versions, [genericBlockSize]uint64{})
	}

	if !cs.filled[blockIdx][slotIdx] {
		cs.count++
	}
	cs.blocks[blockIdx][slotIdx] = concreteItem
	cs.filled[blockIdx][slotIdx] = true
	cs.versions[blockIdx][slotIdx] = version
	return true
}

// Get returns a copy of the component at the given slot.
func (cs *genericComponentStorage[T]) Get(index uint32) (any, bool) {
	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	if blockIdx >= len(cs.blocks) || !cs.filled[blockIdx][slotIdx] {
		return nil, false
	}

	return cs.blocks[blockIdx][slotIdx], true
}

// Version returns the version stamped on the slot, or 0 if it is empty.
func (cs *genericComponentStorage[T]) Version(index uint32) uint64 {
	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	if blockIdx >= len(cs.blocks) || !cs.filled[blockIdx][slotIdx] {
		return 0
	}

	return cs.versions[blockIdx][slotIdx]
}

// Delete marks a component slot as empty.
func (cs *genericComponentStorage[T]) Delete(index uint32) bool {
	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	if blockIdx >= len(cs.blocks) || !cs.filled[blockIdx][slotIdx] {
		return false
	}

	var zero T
	cs.filled[blockIdx][slotIdx] = false
	cs.blocks[blockIdx][slotIdx] = zero // Zero out the value
	cs.versions[blockIdx][slotIdx] = 0
	cs.count--
	return true
}

// Has checks if a component exists at the given slot.
func (cs *genericComponentStorage[T]) Has(index uint32) bool {
	blockIdx := int(index) / genericBlockSize
	slotIdx := int(index) % genericBlockSize

	if blockIdx >= len(cs.blocks) {
		return false
	}

	return cs.filled[blockIdx][slotIdx]
}

// Len returns the number of filled slots.
func (cs *genericComponentStorage[T]) Len() int {
	return cs.count
}

func (cs *genericComponentStorage[T]) Iter() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for blockIdx := range cs.filled {
			for slotIdx := 0; slotIdx < genericBlockSize; slotIdx++ {
				if cs.filled[blockIdx][slotIdx] {
					if !yield(uint32(blockIdx*genericBlockSize + slotIdx)) {
						return
					}
				}
			}
		}
	}
}
