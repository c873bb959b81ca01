// Package session tracks how many new cards have been introduced per deck
// on the current calendar day, and resets that log when the day rolls over.
// "Today" is computed in a single fixed UTC+5:30 offset for every user; the
// day boundary is global rather than localized.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/platform/logger"
	"github.com/karuta-app/karuta-api/internal/store"
)

// StudyZone is the fixed offset in which day boundaries are computed.
var StudyZone = time.FixedZone("UTC+05:30", (5*60+30)*60)

// Clock abstracts the time source so day-boundary behavior is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// DateKey formats a time as the calendar date it falls on in the study zone.
func DateKey(t time.Time) string {
	return t.In(StudyZone).Format("2006-01-02")
}

// SameStudyDay reports whether two times fall on the same calendar day in
// the study zone.
func SameStudyDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// Tracker maintains the per-deck daily new-card log for a single user.
// State is held in memory and written through to the session state store so
// quota survives restarts; a store failure degrades to memory-only tracking.
type Tracker struct {
	userID int64
	clock  Clock
	store  store.SessionStateStore
	logger *slog.Logger

	mu    sync.Mutex
	date  string
	shown map[domain.DeckType]map[string]struct{}
}

// NewTracker creates a tracker for one user, loading any persisted log for
// the current day. A nil store keeps the tracker memory-only.
func NewTracker(ctx context.Context, userID int64, clock Clock, stateStore store.SessionStateStore, log *slog.Logger) *Tracker {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	t := &Tracker{
		userID: userID,
		clock:  clock,
		store:  stateStore,
		logger: log.With(slog.String("component", "session_tracker")),
		date:   DateKey(clock.Now()),
		shown:  make(map[domain.DeckType]map[string]struct{}),
	}

	if stateStore != nil {
		state, err := stateStore.Get(ctx, userID)
		switch {
		case err == nil:
			// Persisted state only counts if it belongs to today.
			if state.Date == t.date {
				for deck, fronts := range state.Shown {
					set := make(map[string]struct{}, len(fronts))
					for _, front := range fronts {
						set[front] = struct{}{}
					}
					t.shown[deck] = set
				}
			}
		case errors.Is(err, store.ErrNotFound):
		default:
			t.logger.Warn("failed to load session state, starting empty",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
		}
	}

	return t
}

// HasNewSessionStarted reports whether the study day has rolled over since
// the log was last touched, clearing the log if so.
func (t *Tracker) HasNewSessionStarted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollIfNeeded()
}

// CardsShownToday returns the fronts already introduced as new cards today
// for the given deck.
func (t *Tracker) CardsShownToday(deck domain.DeckType) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollIfNeeded()

	fronts := make([]string, 0, len(t.shown[deck]))
	for front := range t.shown[deck] {
		fronts = append(fronts, front)
	}
	return fronts
}

// ShownToday reports whether the front has already been introduced today.
func (t *Tracker) ShownToday(deck domain.DeckType, front string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollIfNeeded()

	_, ok := t.shown[deck][front]
	return ok
}

// MarkShown records that the front was introduced as a new card today.
// Idempotent: marking the same front twice does not double-count against
// the daily quota.
func (t *Tracker) MarkShown(ctx context.Context, deck domain.DeckType, front string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollIfNeeded()

	set, ok := t.shown[deck]
	if !ok {
		set = make(map[string]struct{})
		t.shown[deck] = set
	}
	if _, dup := set[front]; dup {
		return
	}
	set[front] = struct{}{}

	t.persist(ctx)
}

// rollIfNeeded clears the log when the study day has changed.
// Caller must hold t.mu. Reports whether a roll happened.
func (t *Tracker) rollIfNeeded() bool {
	today := DateKey(t.clock.Now())
	if today == t.date {
		return false
	}
	t.date = today
	t.shown = make(map[domain.DeckType]map[string]struct{})
	return true
}

// persist writes the current log through to the store, best effort.
// Caller must hold t.mu.
func (t *Tracker) persist(ctx context.Context) {
	if t.store == nil {
		return
	}

	state := &store.SessionState{
		Date:  t.date,
		Shown: make(map[domain.DeckType][]string, len(t.shown)),
	}
	for deck, set := range t.shown {
		fronts := make([]string, 0, len(set))
		for front := range set {
			fronts = append(fronts, front)
		}
		state.Shown[deck] = fronts
	}

	if err := t.store.Put(ctx, t.userID, state); err != nil {
		logger.FromContextOrDefault(ctx, t.logger).Warn("failed to persist session state",
			slog.Int64("user_id", t.userID),
			slog.String("error", err.Error()))
	}
}
