package store

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository implements Repository in process memory for tests and
// local development. Safe for concurrent use.
type MemoryRepository[T any] struct {
	mu    sync.RWMutex
	items []T

	id     func(T) string
	withID func(T, string) T
	stamp  func(T, time.Time) T
	// match is the uniqueness predicate between a candidate and a stored
	// record. Nil disables dedupe.
	match func(candidate, stored T) bool
}

// NewMemorySubscriptionRepository returns an in-memory subscription store
// with the same uniqueness key as the mongo-backed one.
func NewMemorySubscriptionRepository() *MemoryRepository[Subscription] {
	return &MemoryRepository[Subscription]{
		id:     func(s Subscription) string { return s.ID },
		withID: func(s Subscription, id string) Subscription { s.ID = id; return s },
		stamp: func(s Subscription, now time.Time) Subscription {
			if s.CreatedAt.IsZero() {
				s.CreatedAt = now
			}
			return s
		},
		match: func(candidate, stored Subscription) bool {
			return candidate.Target == stored.Target && candidate.CallbackURL == stored.CallbackURL
		},
	}
}

// NewMemoryPublicationRepository returns an in-memory publication store with
// the same uniqueness key as the mongo-backed one.
func NewMemoryPublicationRepository() *MemoryRepository[Publication] {
	return &MemoryRepository[Publication]{
		id:     func(p Publication) string { return p.ID },
		withID: func(p Publication, id string) Publication { p.ID = id; return p },
		stamp: func(p Publication, now time.Time) Publication {
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			return p
		},
		match: func(candidate, stored Publication) bool {
			return candidate.Target == stored.Target
		},
	}
}

// Add stores the record, returning the existing identifier when the
// uniqueness key already matches a stored record.
func (r *MemoryRepository[T]) Add(ctx context.Context, item T) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.match != nil {
		for _, stored := range r.items {
			if r.match(item, stored) {
				return r.id(stored), nil
			}
		}
	}

	if r.id(item) == "" {
		item = r.withID(item, uuid.NewString())
	}
	item = r.stamp(item, time.Now())
	r.items = append(r.items, item)
	return r.id(item), nil
}

// GetAll yields a snapshot of the collection taken at call time, so the
// sequence is stable even if producers add records during iteration.
func (r *MemoryRepository[T]) GetAll(ctx context.Context) iter.Seq2[T, error] {
	r.mu.RLock()
	snapshot := make([]T, len(r.items))
	copy(snapshot, r.items)
	r.mu.RUnlock()

	return func(yield func(T, error) bool) {
		for _, item := range snapshot {
			if ctx.Err() != nil {
				var zero T
				yield(zero, ctx.Err())
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Exists looks up a record by the uniqueness predicate.
func (r *MemoryRepository[T]) Exists(ctx context.Context, item T) (*T, error) {
	if r.match == nil {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.items {
		if r.match(item, stored) {
			found := stored
			return &found, nil
		}
	}
	return nil, nil
}

// Len returns the number of stored records.
func (r *MemoryRepository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
