// Package record persists identity records. Implementations must enforce
// lookup-key uniqueness atomically at insert time and must never expose a
// partially written bundle to readers.
package record

import (
	"context"

	"cipherid/internal/identity/models"
)

// Store is interface-driven so the service stays testable and persistence
// can move between in-memory, PostgreSQL, and cached variants without
// rewiring business code.
type Store interface {
	// Create persists a new record and returns its assigned id. Returns
	// sentinel.ErrConflict (wrapped) when the lookup key already exists.
	Create(ctx context.Context, rec *models.Record) (int64, error)

	// FindByLookupKey returns the record for a lookup key, or
	// sentinel.ErrNotFound (wrapped) when none is registered.
	FindByLookupKey(ctx context.Context, lookupKey string) (*models.Record, error)
}
