package postgres

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/store"
)

// PostgresCardTemplateStore implements the store.CardTemplateStore interface
// using a PostgreSQL database as the storage backend. Deck content is
// written by ingestion tooling; this store only reads it.
type PostgresCardTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardTemplateStore creates a new PostgreSQL implementation of
// the CardTemplateStore interface.
func NewPostgresCardTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresCardTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_template_store")),
	}
}

// Ensure PostgresCardTemplateStore implements store.CardTemplateStore
var _ store.CardTemplateStore = (*PostgresCardTemplateStore)(nil)

// ListByDeck implements store.CardTemplateStore.ListByDeck
func (s *PostgresCardTemplateStore) ListByDeck(ctx context.Context, deckType domain.DeckType) ([]*domain.CardTemplate, error) {
	const query = `
		SELECT deck_type, front, back, extended, position
		FROM card_templates
		WHERE deck_type = $1
		ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, query, string(deckType))
	if err != nil {
		return nil, store.NewStoreError("card_template", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	var templates []*domain.CardTemplate
	for rows.Next() {
		var (
			t        domain.CardTemplate
			deck     string
			extended []byte
		)
		if err := rows.Scan(&deck, &t.Front, &t.Back, &extended, &t.Position); err != nil {
			return nil, store.NewStoreError("card_template", "list", "scan failed", err)
		}
		t.DeckType = domain.DeckType(deck)
		if len(extended) > 0 {
			var detail domain.KanjiDetail
			if err := json.Unmarshal(extended, &detail); err != nil {
				// A malformed extended blob degrades to a plain-back card.
				s.logger.Warn("malformed extended card detail",
					slog.String("deck", deck),
					slog.String("front", t.Front),
					slog.String("error", err.Error()))
			} else {
				t.Extended = &detail
			}
		}
		templates = append(templates, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card_template", "list", "iteration failed", err)
	}
	return templates, nil
}
