package ecs

import (
	"iter"
)

// Query wraps a View with an EntitySet so that systems see a stable per-frame
// snapshot of the matching entities together with what changed since the last frame.
type Query[T any] struct {
	view *View[T]
	set  *EntitySet

	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a started Query over the required components of T.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	if q.set != nil {
		q.set.Release()
	}
	q.view = NewView[T](storage)
	q.set = NewEntitySet(storage, q.view.requiredTypes()...)
	q.set.Start()
	q.cacheValid = false
}

// Execute polls the entity set and builds the entity and component caches for this frame.
// Called automatically by the Scheduler before systems run.
func (q *Query[T]) Execute() {
	if q.set == nil {
		panic("Query.Execute() called before Query.Init()")
	}

	q.set.ApplyChanges()

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for _, e := range q.set.Entities() {
		var item T
		if !q.view.FillEntity(e, &item) {
			continue
		}
		q.cachedEntities = append(q.cachedEntities, e.Id())
		q.cachedComponents = append(q.cachedComponents, item)
	}

	q.cacheValid = true
}

// Release detaches the Query from its storage.
func (q *Query[T]) Release() {
	if q.set != nil {
		q.set.Release()
	}
	q.cacheValid = false
}

// Iter returns an iterator over entity IDs and component data.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Len returns the number of entities matched by the last Execute.
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}

// Added returns the entities that started matching at the last Execute.
func (q *Query[T]) Added() []Entity {
	if !q.cacheValid {
		panic("Query.Added() called before Query.Execute()")
	}
	return q.set.Added()
}

// Changed returns the entities whose required components changed at the last Execute.
func (q *Query[T]) Changed() []Entity {
	if !q.cacheValid {
		panic("Query.Changed() called before Query.Execute()")
	}
	return q.set.Changed()
}

// Removed returns the entities that stopped matching at the last Execute.
func (q *Query[T]) Removed() []Entity {
	if !q.cacheValid {
		panic("Query.Removed() called before Query.Execute()")
	}
	return q.set.Removed()
}
