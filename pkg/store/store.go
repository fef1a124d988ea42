// Package store defines the durable keyed record store contract consumed by
// the ledger. A store holds the full collection of one entity kind in
// memory and persists the collection synchronously on every mutation.
package store

import "context"

// Record is implemented by entities kept in a Store. WithKey returns a copy
// of the record with the given id set, so stores can assign generated ids
// without reflection.
type Record[T any] interface {
	Key() string
	WithKey(id string) T
}

// Store is a durable, typed, keyed collection of one entity kind.
//
// Every mutating operation persists the collection before returning; a
// persistence failure is fatal and propagates to the caller unchanged, with
// no rollback and no retry. The store does not enforce referential
// integrity between entity kinds; that is the caller's responsibility.
type Store[T Record[T]] interface {
	// Find returns all records. Order is not significant.
	Find(ctx context.Context) ([]T, error)

	// FindOne returns the record with the given id, or a NotFoundError if
	// it is absent.
	FindOne(ctx context.Context, id string) (T, error)

	// Create assigns a fresh unique id to body, stores it, persists, and
	// returns the stored record.
	Create(ctx context.Context, body T) (T, error)

	// Update applies merge to the existing record and stores the result
	// under the same id. Fields the merge function leaves untouched are
	// preserved. Returns a NotFoundError if the id is absent.
	Update(ctx context.Context, id string, merge func(T) T) (T, error)

	// Delete removes the record, persists, and returns the deleted id.
	// Returns a NotFoundError if the id is absent.
	Delete(ctx context.Context, id string) (string, error)
}
