package domain

import "errors"

// CardTemplate-specific validation errors
var (
	// ErrTemplateFrontEmpty is returned when a card template's front is empty.
	ErrTemplateFrontEmpty = errors.New("card template front cannot be empty")

	// ErrTemplateBackEmpty is returned when a card template's back is empty.
	ErrTemplateBackEmpty = errors.New("card template back cannot be empty")
)

// KanjiDetail holds the structured back side of a kanji card.
// Simpler decks (kana, sentences) carry a plain string answer instead.
type KanjiDetail struct {
	Meanings    []string `json:"meanings"`
	Onyomi      []string `json:"onyomi,omitempty"`
	Kunyomi     []string `json:"kunyomi,omitempty"`
	StrokeCount int      `json:"stroke_count,omitempty"`
}

// CardTemplate is an immutable content unit from a deck's source collection.
// The front string is the identity key, unique within a deck.
type CardTemplate struct {
	DeckType DeckType     `json:"deck_type"`
	Front    string       `json:"front"`
	Back     string       `json:"back"`
	Extended *KanjiDetail `json:"extended,omitempty"`
	Position int          `json:"position"` // source order within the deck
}

// Validate checks if the CardTemplate has valid data.
// Returns an error if any field fails validation.
func (t *CardTemplate) Validate() error {
	if !t.DeckType.Valid() {
		return ErrInvalidDeckType
	}
	if t.Front == "" {
		return ErrTemplateFrontEmpty
	}
	if t.Back == "" && t.Extended == nil {
		return ErrTemplateBackEmpty
	}
	return nil
}
