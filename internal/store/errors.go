package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateID is returned when creating an entity with an existing key.
	ErrDuplicateID = errors.New("entity with this key already exists")

	// ErrForeignKey is returned when a foreign key constraint is violated,
	// e.g. adding a pool to a missing subnet or deleting a subnet with pools.
	ErrForeignKey = errors.New("foreign key constraint violated")

	// ErrConnectionFailed is returned when the database cannot be opened.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when schema migration fails.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrInvalidData is returned when a list column cannot be encoded or decoded.
	ErrInvalidData = errors.New("invalid data format")

	// ErrTxFailed is returned when a transaction cannot begin or commit.
	ErrTxFailed = errors.New("transaction failed")
)

// StoreError wraps errors with the operation and entity that failed.
type StoreError struct {
	Op      string // Operation that failed (e.g., "CreatePool")
	Entity  string // Entity type (e.g., "subnet", "pool")
	ID      string // Entity key if applicable
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
