package domain

import "errors"

// DeckType identifies one of the built-in study decks.
type DeckType string

// Possible deck type values
const (
	DeckHiragana DeckType = "hiragana"
	DeckKatakana DeckType = "katakana"
	DeckKanji    DeckType = "kanji"
	DeckSentence DeckType = "sentence"
)

// ErrInvalidDeckType is returned when a deck type is not one of the known decks.
var ErrInvalidDeckType = errors.New("invalid deck type")

// AllDeckTypes lists every deck in a stable order, used when an operation
// (e.g. the review forecast) spans all decks.
var AllDeckTypes = []DeckType{DeckHiragana, DeckKatakana, DeckKanji, DeckSentence}

// Valid reports whether the deck type is one of the known decks.
func (d DeckType) Valid() bool {
	switch d {
	case DeckHiragana, DeckKatakana, DeckKanji, DeckSentence:
		return true
	default:
		return false
	}
}

// ParseDeckType converts a string into a DeckType.
// Returns ErrInvalidDeckType if the string does not name a known deck.
func ParseDeckType(s string) (DeckType, error) {
	d := DeckType(s)
	if !d.Valid() {
		return "", ErrInvalidDeckType
	}
	return d, nil
}
