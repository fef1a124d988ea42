package store

import (
	"errors"
	"fmt"
)

// Common record store errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	// Concrete stores wrap it in a NotFoundError carrying the entity name.
	ErrNotFound = errors.New("store: record not found")

	// ErrPersistence is returned when the underlying durable write fails.
	// Persistence failures are fatal: they are never retried and propagate
	// to the caller unchanged.
	ErrPersistence = errors.New("store: persistence failure")
)

// NotFoundError reports an absent record. Its message is the caller-facing
// "<entity> not found" form; the id is kept for logging.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Unwrap makes errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound builds a NotFoundError for the given entity kind and id.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound checks if the given error indicates an absent record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPersistence checks if the given error indicates a failed durable write.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// WrapError wraps an error with the store operation that produced it.
func WrapError(err error, entity, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("store %s %s: %w", entity, operation, err)
}
