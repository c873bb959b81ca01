// Package deck holds the per-deck study policy descriptors. The four decks
// share one selection engine; everything that legitimately differs between
// them (daily new-card limit, how "due" is compared, per-session caps) lives
// in a Descriptor rather than in deck-specific code paths.
package deck

import (
	"fmt"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// DueComparison selects how a record's due date is compared against "now"
// when partitioning due cards. The two modes are both in active use: kana
// decks treat a card as due only once its due date has strictly passed,
// while kanji and sentence decks already surface cards due later the same
// calendar day.
type DueComparison int

const (
	// DueStrictlyPast marks a card due when dueDate <= now.
	DueStrictlyPast DueComparison = iota
	// DueSameCalendarDay marks a card due when its due date falls on or
	// before the current calendar day in the study timezone.
	DueSameCalendarDay
)

// DefaultDailyNewLimit is the number of new cards a deck introduces per
// calendar day unless its descriptor overrides it.
const DefaultDailyNewLimit = 3

// Descriptor configures the selection engine for one deck.
type Descriptor struct {
	Type          domain.DeckType
	DailyNewLimit int           // max new cards introduced per calendar day
	SessionCap    int           // max due cards per selection call; 0 = unlimited
	DueComparison DueComparison // how due cards are partitioned
}

// Registry resolves deck descriptors by type.
type Registry struct {
	decks map[domain.DeckType]Descriptor
}

// NewDefaultRegistry builds the registry with the built-in deck policies.
func NewDefaultRegistry() *Registry {
	return NewRegistryWithLimit(DefaultDailyNewLimit)
}

// NewRegistryWithLimit builds the registry with the built-in deck policies
// but a caller-chosen daily new-card limit, applied to every deck. A limit
// of zero or less falls back to DefaultDailyNewLimit.
func NewRegistryWithLimit(dailyNewLimit int) *Registry {
	return NewRegistry([]Descriptor{
		{Type: domain.DeckHiragana, DailyNewLimit: dailyNewLimit, DueComparison: DueStrictlyPast},
		{Type: domain.DeckKatakana, DailyNewLimit: dailyNewLimit, DueComparison: DueStrictlyPast},
		{Type: domain.DeckKanji, DailyNewLimit: dailyNewLimit, SessionCap: 3, DueComparison: DueSameCalendarDay},
		{Type: domain.DeckSentence, DailyNewLimit: dailyNewLimit, DueComparison: DueSameCalendarDay},
	})
}

// NewRegistry builds a registry from explicit descriptors.
func NewRegistry(descriptors []Descriptor) *Registry {
	decks := make(map[domain.DeckType]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if d.DailyNewLimit <= 0 {
			d.DailyNewLimit = DefaultDailyNewLimit
		}
		decks[d.Type] = d
	}
	return &Registry{decks: decks}
}

// Get returns the descriptor for the given deck type.
func (r *Registry) Get(deckType domain.DeckType) (Descriptor, error) {
	d, ok := r.decks[deckType]
	if !ok {
		return Descriptor{}, fmt.Errorf("no descriptor for deck %q: %w", deckType, domain.ErrInvalidDeckType)
	}
	return d, nil
}
