package store

import (
	"context"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// SessionState is the persisted form of the daily new-card log: the calendar
// date it belongs to (formatted in the study timezone) plus, per deck, the
// fronts already introduced as new cards that day.
type SessionState struct {
	Date  string                       `json:"date"` // YYYY-MM-DD in the study timezone
	Shown map[domain.DeckType][]string `json:"shown"`
}

// SessionStateStore defines the interface for persisting the daily new-card
// log between process restarts. A single row per user.
type SessionStateStore interface {
	// Get retrieves the persisted session state for a user.
	// Returns ErrNotFound if the user has no persisted state yet.
	Get(ctx context.Context, userID int64) (*SessionState, error)

	// Put replaces the persisted session state for a user.
	Put(ctx context.Context, userID int64, state *SessionState) error
}
