package ecs

import (
	"reflect"
	"sort"

	"github.com/kamstrup/intmap"
)

// Changes holds the entities added, changed and removed by one poll of an EntitySet.
// Every entity appears in at most one of the three slices.
type Changes struct {
	Added   []Entity
	Changed []Entity
	Removed []Entity
}

// Empty reports whether the poll observed no difference.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Changed) == 0 && len(c.Removed) == 0
}

type member struct {
	entity Entity
	epoch  uint64
}

// EntitySet is a live, filtered view over a Storage. It tracks every entity
// that carries all of its component types and reports the difference between
// two polls as added, changed and removed entities.
//
// The set only reads the storage while polling. It is not safe to poll one
// set from several goroutines.
type EntitySet struct {
	storage *Storage
	filter  filter

	members *intmap.Map[EntityId, *member]
	// initial members not yet reported by a poll
	pending map[EntityId]struct{}

	lastVersion uint64
	epoch       uint64

	changes  Changes
	started  bool
	released bool
}

// NewEntitySet creates an EntitySet over entities carrying all of the given types.
// The set observes nothing until Start is called.
func NewEntitySet(storage *Storage, types ...reflect.Type) *EntitySet {
	return &EntitySet{
		storage: storage,
		filter:  newFilter(storage.registry, types),
		members: intmap.New[EntityId, *member](64),
		pending: make(map[EntityId]struct{}),
	}
}

// Types returns the component types the set filters on.
func (es *EntitySet) Types() []reflect.Type {
	return append([]reflect.Type(nil), es.filter...)
}

// Start scans the storage for the initial membership. Initial members are
// reported as added by the next poll.
func (es *EntitySet) Start() {
	if es.released {
		panic("EntitySet.Start() called after Release()")
	}
	if es.started {
		return
	}
	es.started = true
	es.storage.attachSet(es)

	es.storage.mu.RLock()
	defer es.storage.mu.RUnlock()

	es.lastVersion = es.storage.version
	es.storage.scan(es.filter, func(id EntityId) bool {
		es.members.Put(id, &member{entity: es.storage.snapshot(es.filter, id)})
		es.pending[id] = struct{}{}
		return true
	})
}

// ApplyChanges polls the storage and records the difference since the last poll.
// It returns true if anything was added, changed or removed.
func (es *EntitySet) ApplyChanges() bool {
	if es.released {
		panic("EntitySet.ApplyChanges() called after Release()")
	}
	if !es.started {
		panic("EntitySet.ApplyChanges() called before Start()")
	}

	es.changes = Changes{}

	es.storage.mu.RLock()
	if es.storage.version != es.lastVersion {
		es.diff()
		es.lastVersion = es.storage.version
	}
	es.storage.mu.RUnlock()

	es.flushPending()

	sortEntities(es.changes.Added)
	sortEntities(es.changes.Changed)
	sortEntities(es.changes.Removed)
	return !es.changes.Empty()
}

// diff compares the membership snapshot against the storage. Must hold the storage lock.
func (es *EntitySet) diff() {
	es.epoch++
	epoch := es.epoch

	es.storage.scan(es.filter, func(id EntityId) bool {
		m, ok := es.members.Get(id)
		if !ok {
			e := es.storage.snapshot(es.filter, id)
			es.members.Put(id, &member{entity: e, epoch: epoch})
			es.changes.Added = append(es.changes.Added, e)
			return true
		}

		m.epoch = epoch
		if !es.storage.sameVersions(es.filter, m.entity) {
			m.entity = es.storage.snapshot(es.filter, id)
			if _, initial := es.pending[id]; !initial {
				es.changes.Changed = append(es.changes.Changed, m.entity)
			}
		}
		return true
	})

	var gone []EntityId
	es.members.ForEach(func(id EntityId, m *member) bool {
		if m.epoch != epoch {
			gone = append(gone, id)
		}
		return true
	})

	for _, id := range gone {
		m, _ := es.members.Get(id)
		es.members.Del(id)
		if _, initial := es.pending[id]; initial {
			// never reported, so there is nothing to remove
			delete(es.pending, id)
			continue
		}
		es.changes.Removed = append(es.changes.Removed, m.entity)
	}
}

func (es *EntitySet) flushPending() {
	if len(es.pending) == 0 {
		return
	}
	for id := range es.pending {
		if m, ok := es.members.Get(id); ok {
			es.changes.Added = append(es.changes.Added, m.entity)
		}
	}
	clear(es.pending)
}

// Poll is ApplyChanges followed by reading the recorded changes.
func (es *EntitySet) Poll() Changes {
	es.ApplyChanges()
	return es.changes
}

// Added returns the entities added by the last poll, sorted by id.
func (es *EntitySet) Added() []Entity { return es.changes.Added }

// Changed returns the entities changed by the last poll, sorted by id.
func (es *EntitySet) Changed() []Entity { return es.changes.Changed }

// Removed returns the entities removed by the last poll, sorted by id.
// Each carries the last components observed before removal.
func (es *EntitySet) Removed() []Entity { return es.changes.Removed }

// Entities returns the current membership snapshot, sorted by id.
func (es *EntitySet) Entities() []Entity {
	entities := make([]Entity, 0, es.members.Len())
	es.members.ForEach(func(_ EntityId, m *member) bool {
		entities = append(entities, m.entity)
		return true
	})
	sortEntities(entities)
	return entities
}

// Contains reports whether id is a member as of the last poll.
func (es *EntitySet) Contains(id EntityId) bool {
	_, ok := es.members.Get(id)
	return ok
}

// Get returns the snapshot of a member as of the last poll.
func (es *EntitySet) Get(id EntityId) (Entity, bool) {
	m, ok := es.members.Get(id)
	if !ok {
		return Entity{}, false
	}
	return m.entity, true
}

// Len returns the number of members as of the last poll.
func (es *EntitySet) Len() int {
	return es.members.Len()
}

// Released reports whether Release has been called.
func (es *EntitySet) Released() bool {
	return es.released
}

// Release detaches the set from its storage. Polling a released set panics.
func (es *EntitySet) Release() {
	if es.released {
		return
	}
	es.released = true
	if es.started {
		es.storage.detachSet(es)
	}
	es.members.Clear()
	clear(es.pending)
	es.changes = Changes{}
}

func sortEntities(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].id < entities[j].id
	})
}
