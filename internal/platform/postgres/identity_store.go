package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/store"
)

// PostgresIdentityStore implements the store.IdentityStore interface using
// a PostgreSQL database as the storage backend.
type PostgresIdentityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresIdentityStore creates a new PostgreSQL implementation of the
// IdentityStore interface.
func NewPostgresIdentityStore(db store.DBTX, logger *slog.Logger) *PostgresIdentityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresIdentityStore{
		db:     db,
		logger: logger.With(slog.String("component", "identity_store")),
	}
}

// Ensure PostgresIdentityStore implements store.IdentityStore
var _ store.IdentityStore = (*PostgresIdentityStore)(nil)

// GetNumericID implements store.IdentityStore.GetNumericID
func (s *PostgresIdentityStore) GetNumericID(ctx context.Context, externalID string) (int64, error) {
	const query = `SELECT numeric_id FROM identity_map WHERE external_id = $1`

	var id int64
	err := s.db.QueryRowContext(ctx, query, externalID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrIdentityNotFound
	}
	if err != nil {
		return 0, store.NewStoreError("identity", "get", "query failed", err)
	}
	return id, nil
}

// CreateMapping implements store.IdentityStore.CreateMapping
func (s *PostgresIdentityStore) CreateMapping(ctx context.Context, externalID string, numericID int64) error {
	const query = `INSERT INTO identity_map (external_id, numeric_id) VALUES ($1, $2)`

	if _, err := s.db.ExecContext(ctx, query, externalID, numericID); err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return store.NewStoreError("identity", "create", "exec failed", err)
	}
	return nil
}

// WithTx implements store.IdentityStore.WithTx
func (s *PostgresIdentityStore) WithTx(tx *sql.Tx) store.IdentityStore {
	return &PostgresIdentityStore{db: tx, logger: s.logger}
}
