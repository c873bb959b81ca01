package study

import (
	"context"

	"github.com/karuta-app/karuta-api/internal/cache"
	"github.com/karuta-app/karuta-api/internal/domain"
)

// CardCounts returns the number of new and due cards for a user in a deck,
// served from the aggregate cache when fresh and recomputed from the record
// and template collections on a miss.
func (s *Service) CardCounts(ctx context.Context, externalID string, deckType domain.DeckType) (Counts, error) {
	if externalID == "" {
		return Counts{}, ErrEmptyUser
	}
	descriptor, err := s.registry.Get(deckType)
	if err != nil {
		return Counts{}, err
	}

	userID, err := s.resolver.ResolveNumericUserID(ctx, externalID)
	if err != nil {
		return Counts{}, err
	}

	if aggregate, ok := s.cache.GetAggregate(userID, deckType); ok {
		return Counts{New: aggregate.NewCount, Due: aggregate.DueCount}, nil
	}

	records := s.loadRecords(ctx, userID, deckType)
	templates, _ := s.loadTemplates(ctx, deckType)

	studied := make(map[string]struct{}, len(records))
	for _, r := range records {
		studied[r.Front] = struct{}{}
	}

	counts := Counts{
		Due: len(dueRecords(records, descriptor.DueComparison, s.clock.Now())),
	}
	for _, tmpl := range templates {
		if _, seen := studied[tmpl.Front]; !seen {
			counts.New++
		}
	}

	s.cache.PutAggregate(userID, deckType, cache.Aggregate{NewCount: counts.New, DueCount: counts.Due})
	return counts, nil
}
