package study

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/deck"
	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/platform/logger"
)

// SelectCards computes the ordered set of cards the user should study next
// in the given deck. Due cards take priority over new cards; new cards are
// gated by the deck's daily limit. An empty external id yields an immediate
// empty result with no cache or store access.
//
// Expected operational failures (remote reads) never surface as errors;
// the result degrades to an empty card set. Errors are returned only for
// invalid input: an unknown deck or selection mode.
func (s *Service) SelectCards(ctx context.Context, externalID string, deckType domain.DeckType, mode Mode) (*SelectionResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	descriptor, err := s.registry.Get(deckType)
	if err != nil {
		return nil, err
	}

	if externalID == "" {
		return &SelectionResult{Cards: []StudyCard{}}, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := s.resolver.ResolveNumericUserID(ctx, externalID)
	if err != nil {
		log.Error("failed to resolve user id", slog.String("error", err.Error()))
		return &SelectionResult{Cards: []StudyCard{}}, nil
	}

	now := s.clock.Now()
	records := s.loadRecords(ctx, userID, deckType)

	if mode != ModeNew {
		due := dueRecords(records, descriptor.DueComparison, now)
		if len(due) > 0 {
			if descriptor.SessionCap > 0 && len(due) > descriptor.SessionCap {
				due = due[:descriptor.SessionCap]
			}

			// Enrich with template detail where available; a failed template
			// read still leaves the record's own front/back usable.
			_, byFront := s.loadTemplates(ctx, deckType)
			cards := make([]StudyCard, 0, len(due))
			for _, r := range due {
				card := StudyCard{Front: r.Front, Back: r.Back, Review: *r}
				if tmpl, ok := byFront[r.Front]; ok {
					card.Extended = tmpl.Extended
					if card.Back == "" {
						card.Back = tmpl.Back
					}
				}
				cards = append(cards, card)
			}
			return &SelectionResult{Cards: cards}, nil
		}
		if mode == ModeDue {
			return &SelectionResult{Cards: []StudyCard{}}, nil
		}
	}

	return s.selectNewCards(ctx, userID, descriptor, records), nil
}

// selectNewCards computes the new-card portion of a selection: templates the
// user has never studied, minus today's introductions, capped to the deck's
// remaining daily quota.
func (s *Service) selectNewCards(ctx context.Context, userID int64, descriptor deck.Descriptor, records []*domain.ReviewRecord) *SelectionResult {
	tracker := s.sessions.ForUser(ctx, userID)
	shownToday := tracker.CardsShownToday(descriptor.Type)
	remaining := descriptor.DailyNewLimit - len(shownToday)
	if remaining <= 0 {
		return &SelectionResult{Cards: []StudyCard{}, Message: FinishedMessage}
	}

	studied := make(map[string]struct{}, len(records))
	for _, r := range records {
		studied[r.Front] = struct{}{}
	}

	templates, _ := s.loadTemplates(ctx, descriptor.Type)
	now := s.clock.Now()

	cards := make([]StudyCard, 0, remaining)
	for _, tmpl := range templates {
		if len(cards) == remaining {
			break
		}
		if _, seen := studied[tmpl.Front]; seen {
			continue
		}
		if tracker.ShownToday(descriptor.Type, tmpl.Front) {
			continue
		}
		review := domain.NewReviewRecord(userID, descriptor.Type, tmpl.Front, tmpl.Back, now)
		cards = append(cards, StudyCard{
			Front:    tmpl.Front,
			Back:     tmpl.Back,
			Extended: tmpl.Extended,
			Review:   *review,
			New:      true,
		})
	}

	if len(cards) == 0 {
		return &SelectionResult{Cards: []StudyCard{}, Message: FinishedMessage}
	}
	return &SelectionResult{Cards: cards}
}
