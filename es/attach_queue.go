package es

import (
	"sync"

	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/scene"
)

type pendingAttach struct {
	// id is zero for nodes not owned by an entity
	id   ecs.EntityId
	node *scene.Node
}

// attachQueue is a FIFO safe for concurrent push and pop.
type attachQueue struct {
	mu    sync.Mutex
	items []pendingAttach
}

func (q *attachQueue) push(item pendingAttach) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

func (q *attachQueue) pop() (pendingAttach, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return pendingAttach{}, false
	}
	item := q.items[0]
	q.items[0] = pendingAttach{}
	q.items = q.items[1:]
	return item, true
}

func (q *attachQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *attachQueue) clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
