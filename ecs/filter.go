package ecs

import (
	"reflect"
	"sort"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// filter is a set of required component types, sorted by name and free of duplicates.
type filter []reflect.Type

func newFilter(registry *ComponentRegistry, types []reflect.Type) filter {
	if len(types) == 0 {
		panic("entity filter requires at least one component type")
	}

	seen := make(map[reflect.Type]bool, len(types))
	f := make(filter, 0, len(types))
	for _, t := range types {
		if !registry.IsRegistered(t) {
			panic("component type " + t.String() + " not registered")
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		f = append(f, t)
	}

	sort.Sort(byTypeName(f))
	return f
}

// scan calls fn for every live entity carrying all types of f.
// The caller must hold the storage lock.
func (s *Storage) scan(f filter, fn func(id EntityId) bool) {
	storages := make([]iComponentStorage, len(f))
	driver := -1
	for i, t := range f {
		storage, ok := s.storages[t]
		if !ok || storage.Len() == 0 {
			return
		}
		storages[i] = storage
		if driver == -1 || storage.Len() < storages[driver].Len() {
			driver = i
		}
	}

	// Walk the sparsest storage and probe the others
	for index := range storages[driver].Iter() {
		if int(index) >= len(s.alive) || !s.alive[index] {
			continue
		}

		matches := true
		for i, storage := range storages {
			if i != driver && !storage.Has(index) {
				matches = false
				break
			}
		}
		if !matches {
			continue
		}

		if !fn(NewEntityId(s.generations[index], index)) {
			return
		}
	}
}

// snapshot builds the Entity view of id restricted to the types of f.
// The caller must hold the storage lock.
func (s *Storage) snapshot(f filter, id EntityId) Entity {
	e := Entity{
		id:         id,
		components: make(map[reflect.Type]any, len(f)),
		versions:   make(map[reflect.Type]uint64, len(f)),
	}
	for _, t := range f {
		storage := s.storages[t]
		e.components[t], _ = storage.Get(id.Index())
		e.versions[t] = storage.Version(id.Index())
	}
	return e
}

// sameVersions reports whether the entity's components of f still carry the versions seen in e.
// The caller must hold the storage lock.
func (s *Storage) sameVersions(f filter, e Entity) bool {
	for _, t := range f {
		if s.storages[t].Version(e.id.Index()) != e.versions[t] {
			return false
		}
	}
	return true
}
