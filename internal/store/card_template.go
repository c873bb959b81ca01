package store

import (
	"context"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// CardTemplateStore defines the interface for deck content persistence.
// Templates are immutable from the scheduler's point of view; content
// ingestion happens through external administrative tooling.
type CardTemplateStore interface {
	// ListByDeck retrieves every card template in a deck in source order.
	ListByDeck(ctx context.Context, deckType domain.DeckType) ([]*domain.CardTemplate, error)
}
