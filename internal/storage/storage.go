// Package storage defines the Storage interface, the contract that any
// record backend must satisfy to work with this application.
//
// Handlers (HTTP layer) should not know or care which backend they are
// talking to. The in-memory store is the default; the SQLite store keeps
// the same semantics on disk. Either can be handed to the handlers.
package storage

import (
	"context"

	"github.com/aanand-mishra/records-api/internal/types"
)

// Storage is the record store contract.
//
// Every implementation must be safe for concurrent use, must never reuse
// an ID after deletion, and must leave state untouched when an operation
// fails.
type Storage interface {
	// Create validates name and age, assigns the next ID and inserts the
	// record. Returns ErrValidation for bad input.
	Create(ctx context.Context, name string, age int) (types.Record, error)

	// Get returns a copy of the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (types.Record, error)

	// List returns every record in ascending ID order.
	// Returns an empty slice (not nil) if there are no records.
	List(ctx context.Context) ([]types.Record, error)

	// Update sets the age of an existing record and returns the result.
	// Returns ErrNotFound if the ID is absent, ErrValidation if age < 0.
	Update(ctx context.Context, id int64, age int) (types.Record, error)

	// Delete removes a record permanently. Deleting an ID that is not
	// present (including one deleted earlier) returns ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of records currently stored.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the backend.
	Close() error
}
