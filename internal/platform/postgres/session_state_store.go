package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/store"
)

// PostgresSessionStateStore implements the store.SessionStateStore interface
// using a PostgreSQL database as the storage backend. One row per user; the
// per-deck log is a JSONB column since its shape is small and session-local.
type PostgresSessionStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStateStore creates a new PostgreSQL implementation of
// the SessionStateStore interface.
func NewPostgresSessionStateStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_state_store")),
	}
}

// Ensure PostgresSessionStateStore implements store.SessionStateStore
var _ store.SessionStateStore = (*PostgresSessionStateStore)(nil)

// Get implements store.SessionStateStore.Get
func (s *PostgresSessionStateStore) Get(ctx context.Context, userID int64) (*store.SessionState, error) {
	const query = `SELECT session_date, shown FROM session_state WHERE user_id = $1`

	var (
		state store.SessionState
		shown []byte
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&state.Date, &shown)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("session_state", "get", "scan failed", err)
	}

	state.Shown = make(map[domain.DeckType][]string)
	if len(shown) > 0 {
		if err := json.Unmarshal(shown, &state.Shown); err != nil {
			return nil, store.NewStoreError("session_state", "get", "malformed shown log", err)
		}
	}
	return &state, nil
}

// Put implements store.SessionStateStore.Put
func (s *PostgresSessionStateStore) Put(ctx context.Context, userID int64, state *store.SessionState) error {
	shown, err := json.Marshal(state.Shown)
	if err != nil {
		return store.NewStoreError("session_state", "put", "marshal failed", err)
	}

	const query = `
		INSERT INTO session_state (user_id, session_date, shown)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			session_date = EXCLUDED.session_date,
			shown = EXCLUDED.shown`

	if _, err := s.db.ExecContext(ctx, query, userID, state.Date, shown); err != nil {
		return store.NewStoreError("session_state", "put", "exec failed", err)
	}
	return nil
}
