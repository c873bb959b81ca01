// Package study implements the card selection engine and the grading commit
// protocol: deciding which cards a user studies next, under which daily
// limits, and how review state evolves after each grade.
package study

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/karuta-app/karuta-api/internal/cache"
	"github.com/karuta-app/karuta-api/internal/deck"
	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/domain/srs"
	"github.com/karuta-app/karuta-api/internal/identity"
	"github.com/karuta-app/karuta-api/internal/platform/logger"
	"github.com/karuta-app/karuta-api/internal/session"
	"github.com/karuta-app/karuta-api/internal/store"
)

// FinishedMessage is the user-facing text for the "nothing left to study"
// state. It is indistinguishable from an empty deck: quota
// exhaustion and a degraded remote read look the same to the user.
const FinishedMessage = "You're done for now, come back later!"

// Mode restricts which part of the selection algorithm runs.
type Mode string

// Selection modes.
const (
	ModeDefault Mode = ""    // due cards first, fall back to new cards
	ModeDue     Mode = "due" // due cards only
	ModeNew     Mode = "new" // new cards only, same daily-limit gating
)

// ErrInvalidMode is returned when a selection mode is not recognized.
var ErrInvalidMode = errors.New("invalid selection mode")

// Valid reports whether the mode is one of the known selection modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDefault, ModeDue, ModeNew:
		return true
	default:
		return false
	}
}

// StudyCard is a card template with the user's review state merged in,
// ready for presentation.
type StudyCard struct {
	Front    string              `json:"front"`
	Back     string              `json:"back"`
	Extended *domain.KanjiDetail `json:"extended,omitempty"`
	Review   domain.ReviewRecord `json:"review"`
	New      bool                `json:"new"` // introduced this call, no stored record yet
}

// SelectionResult is the outcome of one selection call.
type SelectionResult struct {
	Cards   []StudyCard `json:"cards"`
	Message string      `json:"message,omitempty"`
}

// Counts holds the per-deck card counts shown on the deck picker.
type Counts struct {
	New int `json:"new"`
	Due int `json:"due"`
}

// Service is the study scheduler: selection, grading, forecast and counts.
type Service struct {
	records   store.ReviewRecordStore
	templates store.CardTemplateStore
	cache     *cache.Cache
	sessions  *session.Manager
	resolver  identity.Resolver
	srs       srs.Service
	registry  *deck.Registry
	clock     session.Clock
	logger    *slog.Logger
}

// NewService wires the study scheduler.
func NewService(
	records store.ReviewRecordStore,
	templates store.CardTemplateStore,
	recordCache *cache.Cache,
	sessions *session.Manager,
	resolver identity.Resolver,
	srsService srs.Service,
	registry *deck.Registry,
	clock session.Clock,
	log *slog.Logger,
) *Service {
	if records == nil {
		panic("records cannot be nil")
	}
	if templates == nil {
		panic("templates cannot be nil")
	}
	if recordCache == nil {
		panic("recordCache cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if registry == nil {
		registry = deck.NewDefaultRegistry()
	}
	if clock == nil {
		clock = session.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		records:   records,
		templates: templates,
		cache:     recordCache,
		sessions:  sessions,
		resolver:  resolver,
		srs:       srsService,
		registry:  registry,
		clock:     clock,
		logger:    log.With(slog.String("component", "study_service")),
	}
}

// SignOut drops all cached state for a user: record collections for every
// deck, aggregates and profile data.
func (s *Service) SignOut(ctx context.Context, externalID string) error {
	if externalID == "" {
		return ErrEmptyUser
	}
	userID, err := s.resolver.ResolveNumericUserID(ctx, externalID)
	if err != nil {
		return err
	}
	s.cache.InvalidateUser(userID)
	return nil
}

// loadRecords returns the user's review records for a deck, read through the
// cache. A store failure is logged and degraded to an empty collection; the
// engine returns a best-effort result rather than raising. The cache is only
// populated after a successful fetch so a transient failure is not pinned
// for a whole TTL window.
func (s *Service) loadRecords(ctx context.Context, userID int64, deckType domain.DeckType) []*domain.ReviewRecord {
	if cached, ok := s.cache.GetRecords(userID, deckType); ok {
		return cached
	}

	records, err := s.records.ListByUserDeck(ctx, userID, deckType)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load review records, treating as empty",
			slog.Int64("user_id", userID),
			slog.String("deck", string(deckType)),
			slog.String("error", err.Error()))
		return nil
	}

	for _, r := range records {
		r.Normalize()
	}
	s.cache.PutRecords(userID, deckType, records)
	return records
}

// loadTemplates returns a deck's card templates in source order, with a
// by-front index. Failures degrade to an empty deck.
func (s *Service) loadTemplates(ctx context.Context, deckType domain.DeckType) ([]*domain.CardTemplate, map[string]*domain.CardTemplate) {
	templates, err := s.templates.ListByDeck(ctx, deckType)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load card templates, treating as empty",
			slog.String("deck", string(deckType)),
			slog.String("error", err.Error()))
		return nil, nil
	}

	byFront := make(map[string]*domain.CardTemplate, len(templates))
	for _, tmpl := range templates {
		byFront[tmpl.Front] = tmpl
	}
	return templates, byFront
}

// dueRecords partitions out the records due under the deck's comparison
// mode, sorted by ascending due date for deterministic ordering.
func dueRecords(records []*domain.ReviewRecord, mode deck.DueComparison, now time.Time) []*domain.ReviewRecord {
	var due []*domain.ReviewRecord
	for _, r := range records {
		switch mode {
		case deck.DueSameCalendarDay:
			if r.IsDue(now) || session.SameStudyDay(r.DueDate, now) {
				due = append(due, r)
			}
		default:
			if r.IsDue(now) {
				due = append(due, r)
			}
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueDate.Before(due[j].DueDate)
	})
	return due
}
