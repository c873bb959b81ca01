package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/domain/srs"
	"github.com/karuta-app/karuta-api/internal/platform/logger"
	"github.com/karuta-app/karuta-api/internal/session"
)

// ErrEmptyUser is returned when a grading call carries no identity.
var ErrEmptyUser = errors.New("external user id cannot be empty")

// Practice grades a card and commits the resulting review state.
//
// The commit protocol, in order: resolve the numeric user id; load the
// pre-grade record (synthesizing the new-card shape when none exists);
// decide from pre-grade state whether this card was being introduced as new
// today; run the SM-2 grading; mark the card in the daily new-card log
// before the new due date is committed; upsert the record; update the cache
// optimistically.
//
// The remote commit is best effort: a write failure is logged and the
// graded record is still returned so the UI can advance. Errors are
// returned only for invalid input.
func (s *Service) Practice(ctx context.Context, externalID string, deckType domain.DeckType, front string, grade srs.Grade) (*domain.ReviewRecord, error) {
	if externalID == "" {
		return nil, ErrEmptyUser
	}
	descriptor, err := s.registry.Get(deckType)
	if err != nil {
		return nil, err
	}
	if front == "" {
		return nil, domain.ErrRecordFrontEmpty
	}
	if !grade.Valid() {
		return nil, srs.ErrInvalidGrade
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := s.resolver.ResolveNumericUserID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user id: %w", err)
	}

	now := s.clock.Now()

	// Pre-grade state decides new-card accounting, so it must be captured
	// before grading moves the due date.
	prior := s.findRecord(ctx, userID, deckType, front)
	wasNew := prior == nil || prior.DueDate.IsZero() || session.SameStudyDay(prior.DueDate, now)

	if prior == nil {
		back := s.lookupBack(ctx, deckType, front)
		prior = domain.NewReviewRecord(userID, deckType, front, back, now)
	}

	updated, err := s.srs.GradeRecord(prior, grade, now)
	if err != nil {
		return nil, err
	}

	// Mark before committing the new due date: once the grade lands, the
	// record no longer looks new.
	if wasNew {
		s.sessions.ForUser(ctx, userID).MarkShown(ctx, descriptor.Type, front)
	}

	if err := s.records.Upsert(ctx, updated); err != nil {
		// At-most-once, best-effort write: the UI advances regardless.
		log.Error("failed to commit review record",
			slog.Int64("user_id", userID),
			slog.String("deck", string(deckType)),
			slog.String("front", front),
			slog.String("error", err.Error()))
	}

	s.cache.PutOneRecord(userID, deckType, updated)

	return updated, nil
}

// findRecord returns the user's stored record for a card, or nil when the
// card has never been graded (or the store is unreachable).
func (s *Service) findRecord(ctx context.Context, userID int64, deckType domain.DeckType, front string) *domain.ReviewRecord {
	for _, r := range s.loadRecords(ctx, userID, deckType) {
		if r.Front == front {
			return r
		}
	}
	return nil
}

// lookupBack snapshots the answer side for a first grading. A missing
// template leaves the snapshot empty rather than failing the grade.
func (s *Service) lookupBack(ctx context.Context, deckType domain.DeckType, front string) string {
	_, byFront := s.loadTemplates(ctx, deckType)
	if tmpl, ok := byFront[front]; ok {
		return tmpl.Back
	}
	return ""
}
