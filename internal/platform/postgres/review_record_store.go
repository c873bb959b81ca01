package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/store"
)

// PostgresReviewRecordStore implements the store.ReviewRecordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewRecordStore creates a new PostgreSQL implementation of
// the ReviewRecordStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
func NewPostgresReviewRecordStore(db store.DBTX, logger *slog.Logger) *PostgresReviewRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_record_store")),
	}
}

// Ensure PostgresReviewRecordStore implements store.ReviewRecordStore
var _ store.ReviewRecordStore = (*PostgresReviewRecordStore)(nil)

// ListByUserDeck implements store.ReviewRecordStore.ListByUserDeck
func (s *PostgresReviewRecordStore) ListByUserDeck(ctx context.Context, userID int64, deckType domain.DeckType) ([]*domain.ReviewRecord, error) {
	const query = `
		SELECT user_id, deck_type, front, back, interval, repetition, ease_factor, due_date, last_studied
		FROM review_records
		WHERE user_id = $1 AND deck_type = $2
		ORDER BY due_date ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, string(deckType))
	if err != nil {
		return nil, store.NewStoreError("review_record", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	return scanReviewRecords(rows)
}

// Upsert implements store.ReviewRecordStore.Upsert
func (s *PostgresReviewRecordStore) Upsert(ctx context.Context, record *domain.ReviewRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	const query = `
		INSERT INTO review_records (user_id, deck_type, front, back, interval, repetition, ease_factor, due_date, last_studied)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, deck_type, front) DO UPDATE SET
			back = EXCLUDED.back,
			interval = EXCLUDED.interval,
			repetition = EXCLUDED.repetition,
			ease_factor = EXCLUDED.ease_factor,
			due_date = EXCLUDED.due_date,
			last_studied = EXCLUDED.last_studied`

	_, err := s.db.ExecContext(ctx, query,
		record.UserID,
		string(record.DeckType),
		record.Front,
		record.Back,
		record.Interval,
		record.Repetition,
		record.EaseFactor,
		record.DueDate,
		record.LastStudied,
	)
	if err != nil {
		return store.NewStoreError("review_record", "upsert", "exec failed", err)
	}
	return nil
}

// WithTx implements store.ReviewRecordStore.WithTx
func (s *PostgresReviewRecordStore) WithTx(tx *sql.Tx) store.ReviewRecordStore {
	return &PostgresReviewRecordStore{db: tx, logger: s.logger}
}

func scanReviewRecords(rows *sql.Rows) ([]*domain.ReviewRecord, error) {
	var records []*domain.ReviewRecord
	for rows.Next() {
		var (
			r        domain.ReviewRecord
			deckType string
			back     sql.NullString
			studied  sql.NullTime
		)
		if err := rows.Scan(&r.UserID, &deckType, &r.Front, &back, &r.Interval, &r.Repetition, &r.EaseFactor, &r.DueDate, &studied); err != nil {
			return nil, store.NewStoreError("review_record", "list", "scan failed", err)
		}
		r.DeckType = domain.DeckType(deckType)
		r.Back = back.String
		if studied.Valid {
			r.LastStudied = studied.Time
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_record", "list", "iteration failed", err)
	}
	return records, nil
}
