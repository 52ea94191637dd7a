// Package dispatch holds the queue between the key listeners and the UI
// loop. Many goroutines push, one pops.
package dispatch

import (
	"context"
	"sync"

	"keyviz/internal/logging"
)

// Queue is an unbounded FIFO of display strings guarded by a single mutex.
// The lock is held only to append or remove one item.
type Queue struct {
	mu    sync.Mutex
	items []string
	rec   logging.Recorder
}

// New returns an empty queue. rec may be nil.
func New(rec logging.Recorder) *Queue {
	if rec == nil {
		rec = logging.Discard()
	}
	return &Queue{rec: rec}
}

// Push appends item. It never blocks on the consumer and never
// deduplicates.
func (q *Queue) Push(item string) {
	q.mu.Lock()
	q.items = append(q.items, item)
	depth := len(q.items)
	q.mu.Unlock()

	q.rec.Log(context.Background(), logging.LevelInfo, "enqueue", "item", item, "depth", depth)
}

// Pop removes and returns the oldest item, if any.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return "", false
	}
	item := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item, true
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
