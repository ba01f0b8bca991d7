package dispatch

import (
	"context"
	"sync"
)

// item is the tagged variant carried by the engine's queue: either a retry
// envelope or the stop sentinel. The explicit flag avoids dynamic type
// inspection when the consumer decides what it dequeued.
type item struct {
	envelope *Envelope
	sentinel bool
}

// fifo is an unbounded, insertion-order queue shared by any number of
// producers and a single consumer. Producers never block; the consumer
// blocks on empty until an item arrives or its context is canceled.
type fifo struct {
	mu    sync.Mutex
	items []item

	// wake has capacity 1 and is armed on every push. A single slot is
	// sufficient because there is exactly one consumer, which re-checks
	// the queue length before blocking.
	wake chan struct{}
}

func newFIFO() *fifo {
	return &fifo{wake: make(chan struct{}, 1)}
}

// push appends to the tail. Safe for concurrent use, never blocks.
func (q *fifo) push(it item) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop removes and returns the head, blocking while the queue is empty.
// Returns the context error if ctx is canceled before an item arrives.
func (q *fifo) pop(ctx context.Context) (item, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			it := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return it, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return item{}, ctx.Err()
		case <-q.wake:
		}
	}
}

// size returns the current queue depth.
func (q *fifo) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
