package store

import (
	"context"
	"database/sql"
)

// IdentityStore defines the interface for the external-id to numeric-id
// mapping table. The numeric id partitions review records; it must be
// stable for the lifetime of a user.
type IdentityStore interface {
	// GetNumericID looks up the numeric id for an external identity string.
	// Returns ErrIdentityNotFound if no mapping exists.
	GetNumericID(ctx context.Context, externalID string) (int64, error)

	// CreateMapping records a new external-id to numeric-id mapping.
	// Returns ErrDuplicate if the external id is already mapped.
	CreateMapping(ctx context.Context, externalID string, numericID int64) error

	// WithTx returns a new IdentityStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) IdentityStore
}
