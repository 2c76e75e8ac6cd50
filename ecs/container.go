package ecs

import (
	"errors"
	"iter"
	"reflect"
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

var (
	// ErrContainerStopped is returned by EntityContainer.Update after Stop.
	ErrContainerStopped = errors.New("entity container stopped")
	// ErrContainerStarted is returned when Start is called twice.
	ErrContainerStarted = errors.New("entity container already started")
	// ErrNilObject is returned when an add callback produces no object.
	ErrNilObject = errors.New("add callback returned nil object")
)

// ContainerCallbacks turn entity lifecycle events into operations on objects of type T.
type ContainerCallbacks[T any] interface {
	// Add creates the object for a newly matching entity.
	Add(e Entity) (T, error)
	// Update refreshes the object of an entity whose components changed.
	Update(object T, e Entity) error
	// Remove releases the object of an entity that no longer matches.
	// It may be called for objects that are already detached.
	Remove(object T, e Entity)
}

// EntityContainer keeps one object per member of an EntitySet, driving the
// callbacks with the set's changes. The mapping always holds exactly the
// members the container has observed, less those whose Add failed.
type EntityContainer[T any] struct {
	set       *EntitySet
	callbacks ContainerCallbacks[T]
	objects   *intmap.Map[EntityId, T]
	failed    *intmap.Map[EntityId, struct{}]
	started   bool
	stopped   bool
}

// NewEntityContainer creates a container over entities carrying all of the given types.
func NewEntityContainer[T any](storage *Storage, callbacks ContainerCallbacks[T], types ...reflect.Type) *EntityContainer[T] {
	return &EntityContainer[T]{
		set:       NewEntitySet(storage, types...),
		callbacks: callbacks,
		objects:   intmap.New[EntityId, T](64),
		failed:    intmap.New[EntityId, struct{}](8),
	}
}

// Start starts the entity set and adds an object for every initial member.
func (c *EntityContainer[T]) Start() error {
	if c.stopped {
		return eris.Wrap(ErrContainerStopped, "start")
	}
	if c.started {
		return eris.Wrap(ErrContainerStarted, "start")
	}
	c.started = true
	c.set.Start()
	_, err := c.Update()
	return err
}

// Update polls the entity set and applies removals, then additions, then changes.
// It reports whether any change was processed. A callback error affects only
// its entity: processing continues and the errors are returned joined. An
// entity whose Add failed stays unmapped until one of its components changes,
// at which point Add is tried again.
func (c *EntityContainer[T]) Update() (bool, error) {
	if c.stopped {
		return false, eris.Wrap(ErrContainerStopped, "update")
	}
	if !c.started {
		return false, eris.New("entity container updated before start")
	}

	if !c.set.ApplyChanges() {
		return false, nil
	}

	var errs []error

	for _, e := range c.set.Removed() {
		c.failed.Del(e.Id())
		object, ok := c.objects.Get(e.Id())
		if !ok {
			continue
		}
		c.callbacks.Remove(object, e)
		c.objects.Del(e.Id())
	}

	for _, e := range c.set.Added() {
		if err := c.add(e); err != nil {
			errs = append(errs, err)
		}
	}

	for _, e := range c.set.Changed() {
		object, ok := c.objects.Get(e.Id())
		if !ok {
			if _, failed := c.failed.Get(e.Id()); failed {
				if err := c.add(e); err != nil {
					errs = append(errs, err)
				}
			}
			continue
		}
		if err := c.callbacks.Update(object, e); err != nil {
			errs = append(errs, eris.Wrapf(err, "update object for %s", e.Id()))
		}
	}

	return true, errors.Join(errs...)
}

// add maps a new object for e, or marks e as failed.
func (c *EntityContainer[T]) add(e Entity) error {
	object, err := c.callbacks.Add(e)
	if err == nil && isNil(object) {
		err = ErrNilObject
	}
	if err != nil {
		c.failed.Put(e.Id(), struct{}{})
		return eris.Wrapf(err, "add object for %s", e.Id())
	}
	c.failed.Del(e.Id())
	c.objects.Put(e.Id(), object)
	return nil
}

// Failed returns the members whose Add callback failed and that have no
// object yet, sorted by id.
func (c *EntityContainer[T]) Failed() []EntityId {
	ids := make([]EntityId, 0, c.failed.Len())
	c.failed.ForEach(func(id EntityId, _ struct{}) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}

// Stop removes every mapped object and releases the entity set.
// Calling Stop more than once has no further effect.
func (c *EntityContainer[T]) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true

	c.objects.ForEach(func(id EntityId, object T) bool {
		e, ok := c.set.Get(id)
		if !ok {
			e = Entity{id: id}
		}
		c.callbacks.Remove(object, e)
		return true
	})
	c.objects.Clear()
	c.failed.Clear()
	c.set.Release()
}

// Get returns the object mapped to the entity.
func (c *EntityContainer[T]) Get(id EntityId) (T, bool) {
	return c.objects.Get(id)
}

// Len returns the number of mapped objects.
func (c *EntityContainer[T]) Len() int {
	return c.objects.Len()
}

// Objects iterates over the mapped objects in no particular order.
func (c *EntityContainer[T]) Objects() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		c.objects.ForEach(func(id EntityId, object T) bool {
			return yield(id, object)
		})
	}
}

// Entities returns the underlying entity set.
func (c *EntityContainer[T]) Entities() *EntitySet {
	return c.set
}

func isNil(object any) bool {
	if object == nil {
		return true
	}
	v := reflect.ValueOf(object)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
