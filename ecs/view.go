package ecs

import (
	"iter"
	"reflect"
)

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
//
// Pointers filled by a View point at copies; write changes back with Storage.SetComponent.
type View[T any] struct {
	storage  *Storage
	types    []reflect.Type
	optional []bool
	fields   []int
}

// NewView creates a new view for the given struct type
// The struct T should have embedded or named fields that are pointers to component types
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{storage: storage}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		// Embedded fields are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		v.types = append(v.types, field.Type.Elem())
		v.optional = append(v.optional, isOptional)
		v.fields = append(v.fields, i)
	}

	if len(v.requiredTypes()) == 0 {
		panic("View struct must have at least one required component")
	}
	return v
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	v.storage.mu.RLock()
	defer v.storage.mu.RUnlock()

	return v.fill(ptr, func(t reflect.Type) (any, bool) {
		return v.storage.getComponent(id, t)
	})
}

// FillEntity populates ptr from an EntitySet snapshot. Types the snapshot
// doesn't carry are read from the storage.
func (v *View[T]) FillEntity(e Entity, ptr *T) bool {
	return v.fill(ptr, func(t reflect.Type) (any, bool) {
		if c, ok := e.components[t]; ok {
			return c, true
		}
		return v.storage.GetComponent(e.id, t)
	})
}

func (v *View[T]) fill(ptr *T, lookup func(reflect.Type) (any, bool)) bool {
	result := reflect.ValueOf(ptr).Elem()

	for i, componentType := range v.types {
		field := result.Field(v.fields[i])

		component, ok := lookup(componentType)
		if !ok {
			if !v.optional[i] {
				return false
			}
			field.Set(reflect.Zero(field.Type()))
			continue
		}

		value := reflect.New(componentType)
		value.Elem().Set(reflect.ValueOf(component))
		field.Set(value)
	}

	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (EntityId, T) pairs where T is the populated view struct
// Optional components are set to nil if not present
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		// Collect ids first so the loop body may mutate the storage
		var ids []EntityId
		v.storage.mu.RLock()
		if f, ok := v.matchFilter(); ok {
			v.storage.scan(f, func(id EntityId) bool {
				ids = append(ids, id)
				return true
			})
		}
		v.storage.mu.RUnlock()

		for _, id := range ids {
			var result T
			if !v.Fill(id, &result) {
				continue
			}
			if !yield(id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
// This is useful when you only care about the component data, not which entity it belongs to
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a new entity with components extracted from the view struct
func (v *View[T]) Spawn(data T) EntityId {
	value := reflect.ValueOf(data)

	components := make([]any, 0, len(v.types))
	for i := range v.types {
		field := value.Field(v.fields[i])
		if field.IsNil() {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, field.Elem().Interface())
	}

	return v.storage.Spawn(components...)
}

// requiredTypes returns a slice of only the required (non-optional) component types
func (v *View[T]) requiredTypes() []reflect.Type {
	required := make([]reflect.Type, 0, len(v.types))
	for i, typ := range v.types {
		if !v.optional[i] {
			required = append(required, typ)
		}
	}
	return required
}

// matchFilter returns the filter over the required types, or false if one
// of them has never been registered.
func (v *View[T]) matchFilter() (filter, bool) {
	required := v.requiredTypes()
	for _, t := range required {
		if !v.storage.registry.IsRegistered(t) {
			return nil, false
		}
	}
	return newFilter(v.storage.registry, required), true
}
