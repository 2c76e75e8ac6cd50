package ecs

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// EntityId encodes both the slot generation (upper 32 bits) and the slot index (lower 32 bits).
// Slots are recycled once an entity is removed, but the generation is bumped each time,
// so an EntityId value is never handed out twice.
type EntityId uint64

// NewEntityId creates an EntityId from a generation and slot index
func NewEntityId(generation uint32, index uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the slot generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// Index extracts the slot index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

func (e EntityId) String() string {
	return fmt.Sprintf("Entity[%d:%d]", e.Index(), e.Generation())
}

// Entity is a read-only snapshot of an entity as seen by an EntitySet.
// It only carries the component types the set filters on.
type Entity struct {
	id         EntityId
	components map[reflect.Type]any
	versions   map[reflect.Type]uint64
}

// Id returns the entity identifier.
func (e Entity) Id() EntityId {
	return e.id
}

// Get returns the component of the given type, or nil if the snapshot doesn't carry it.
func (e Entity) Get(t reflect.Type) any {
	return e.components[t]
}

// Types returns the component types carried by the snapshot, sorted by name.
func (e Entity) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(e.components))
	for t := range e.components {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// Version returns the store version at which the component of type t was last written.
func (e Entity) Version(t reflect.Type) uint64 {
	return e.versions[t]
}

func (e Entity) String() string {
	var b strings.Builder
	b.WriteString(e.id.String())
	b.WriteString("{")
	for i, t := range e.Types() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", e.components[t])
	}
	b.WriteString("}")
	return b.String()
}

// Component returns the component of type T carried by the entity snapshot.
func Component[T any](e Entity) (T, bool) {
	c, ok := e.components[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return c.(T), true
}

// MustComponent is like Component but panics if the snapshot doesn't carry T.
func MustComponent[T any](e Entity) T {
	c, ok := Component[T](e)
	if !ok {
		panic("entity " + e.id.String() + " has no component " + reflect.TypeFor[T]().String())
	}
	return c
}
