package ecs

import (
	"errors"
	"reflect"
)

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the ECS storage during system execution.
// All buffered storage operations are applied in one Storage.Batch, so entity
// sets never observe half of a flush.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	sets    []setComponentsCommand
	removes []removeComponentCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return newCommands()
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
}

type setComponentsCommand struct {
	entity     EntityId
	components []any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function to run after the storage operations have been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// RemoveEntity queues an entity deletion operation.
func (c *Commands) RemoveEntity(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// SetComponents queues attaching the components to an entity.
func (c *Commands) SetComponents(entity EntityId, components ...any) {
	c.sets = append(c.sets, setComponentsCommand{
		entity:     entity,
		components: components,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of buffered operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.sets) + len(c.removes) + len(c.defers)
}

// Flush flushes all commands to the provided storage, reseting the buffer state.
// Operations on entities deleted in the same flush are skipped.
func (c *Commands) Flush(storage *Storage) error {
	var errs []error

	err := storage.Batch(func(tx *Tx) error {
		deletedEntities := make(map[EntityId]bool)

		for _, cmd := range c.deletes {
			tx.RemoveEntity(cmd)
			deletedEntities[cmd] = true
		}

		for _, cmd := range c.removes {
			if !deletedEntities[cmd.entity] {
				tx.RemoveComponent(cmd.entity, cmd.compType)
			}
		}

		for _, cmd := range c.sets {
			if deletedEntities[cmd.entity] {
				continue
			}
			if err := tx.SetComponents(cmd.entity, cmd.components...); err != nil {
				errs = append(errs, err)
			}
		}

		for _, cmd := range c.spawns {
			tx.Spawn(cmd.components...)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.sets = c.sets[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
