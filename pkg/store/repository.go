package store

import (
	"context"
	"iter"
)

// Repository is the generic persistence contract for relay records. It has
// no retry, ordering, or concurrency semantics of its own; those belong to
// the dispatch engine.
type Repository[T any] interface {
	// Add persists a record and returns its identifier. For dedupe-sensitive
	// record kinds the implementation first checks Exists and, when a match
	// is found, skips insertion and returns the existing identifier.
	Add(ctx context.Context, item T) (string, error)

	// GetAll returns a lazy, finite, one-shot sequence over the collection.
	// Each record is yielded exactly once per call; a fresh call re-reads
	// the full collection. Iteration errors are yielded in the second
	// position with a zero record.
	GetAll(ctx context.Context) iter.Seq2[T, error]

	// Exists reports whether a record matching the item's uniqueness key is
	// already stored, returning the stored record or nil.
	Exists(ctx context.Context, item T) (*T, error)
}
