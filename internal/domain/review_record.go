package domain

import (
	"errors"
	"time"
)

// Default review state for a card that has never been graded.
// A synthesized new-card record carries exactly these values.
const (
	DefaultInterval   = 1
	DefaultRepetition = 0
	DefaultEaseFactor = 2.5
)

// Common validation errors for ReviewRecord
var (
	ErrRecordUserIDEmpty   = errors.New("review record user ID cannot be zero")
	ErrRecordFrontEmpty    = errors.New("review record front cannot be empty")
	ErrRecordBadInterval   = errors.New("interval must be greater than or equal to 0")
	ErrRecordBadRepetition = errors.New("repetition must be greater than or equal to 0")
	ErrRecordBadEaseFactor = errors.New("ease factor must be greater than 1.0")
)

// ReviewRecord tracks a user's spaced repetition state for a single card
// within a deck. At most one record exists per (UserID, DeckType, Front);
// it is created on first grading and updated in place thereafter.
type ReviewRecord struct {
	UserID      int64     `json:"user_id"`
	DeckType    DeckType  `json:"deck_type"`
	Front       string    `json:"front"`
	Back        string    `json:"back"`         // answer snapshot at last study
	Interval    int       `json:"interval"`     // current interval in days
	Repetition  int       `json:"repetition"`   // consecutive qualifying reviews
	EaseFactor  float64   `json:"ease_factor"`  // SM-2 multiplier, typically 1.3-2.5
	DueDate     time.Time `json:"due_date"`     // when the card next becomes eligible
	LastStudied time.Time `json:"last_studied"` // last grading event
}

// NewReviewRecord creates the review state for a card being introduced as
// new: due immediately, default SM-2 parameters, never studied.
func NewReviewRecord(userID int64, deck DeckType, front, back string, now time.Time) *ReviewRecord {
	return &ReviewRecord{
		UserID:     userID,
		DeckType:   deck,
		Front:      front,
		Back:       back,
		Interval:   DefaultInterval,
		Repetition: DefaultRepetition,
		EaseFactor: DefaultEaseFactor,
		DueDate:    now,
	}
}

// Validate checks if the ReviewRecord has valid data.
// Returns an error if any field fails validation.
func (r *ReviewRecord) Validate() error {
	if r.UserID == 0 {
		return ErrRecordUserIDEmpty
	}
	if !r.DeckType.Valid() {
		return ErrInvalidDeckType
	}
	if r.Front == "" {
		return ErrRecordFrontEmpty
	}
	if r.Interval < 0 {
		return ErrRecordBadInterval
	}
	if r.Repetition < 0 {
		return ErrRecordBadRepetition
	}
	if r.EaseFactor <= 1.0 {
		return ErrRecordBadEaseFactor
	}
	return nil
}

// Normalize fills in defaults for fields a remote row may be missing.
// Malformed rows are repaired rather than rejected so a single bad record
// cannot stall a study session.
func (r *ReviewRecord) Normalize() {
	if r.Interval <= 0 {
		r.Interval = DefaultInterval
	}
	if r.Repetition < 0 {
		r.Repetition = DefaultRepetition
	}
	if r.EaseFactor <= 1.0 {
		r.EaseFactor = DefaultEaseFactor
	}
}

// IsDue reports whether the record's due date has passed at the given time.
func (r *ReviewRecord) IsDue(now time.Time) bool {
	return !r.DueDate.After(now)
}
