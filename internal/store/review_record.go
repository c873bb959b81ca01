package store

import (
	"context"
	"database/sql"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// ReviewRecordStore defines the interface for review record persistence.
// Records are keyed by (userID, deckType, front); the core never deletes
// them, so the surface is list + upsert.
type ReviewRecordStore interface {
	// ListByUserDeck retrieves all review records for a user within a deck,
	// ordered by due date ascending. Returns an empty slice, not an error,
	// when the user has no records for the deck.
	ListByUserDeck(ctx context.Context, userID int64, deckType domain.DeckType) ([]*domain.ReviewRecord, error)

	// Upsert inserts the record or, if a row already exists for
	// (userID, deckType, front), updates it in place.
	// Returns validation errors from the domain ReviewRecord if data is invalid.
	Upsert(ctx context.Context, record *domain.ReviewRecord) error

	// WithTx returns a new ReviewRecordStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ReviewRecordStore
}
