package api

import (
	"github.com/google/uuid"

	"github.com/karuta-app/karuta-api/internal/service/study"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT used for API authorization
	Token string `json:"token"`
}

// PracticeRequest defines the payload for committing one graded review.
type PracticeRequest struct {
	// Front identifies the card within the deck.
	Front string `json:"front" validate:"required,min=1"`

	// Grade is the SM-2 quality score: 1 again, 3 hard, 4 good, 5 easy.
	Grade int `json:"grade" validate:"required,min=1,max=5"`
}

// PracticeResponse returns the review state after a committed grade.
type PracticeResponse struct {
	Front      string  `json:"front"`
	Interval   int     `json:"interval"`
	Repetition int     `json:"repetition"`
	EaseFactor float64 `json:"ease_factor"`
	DueDate    string  `json:"due_date"` // RFC 3339
}

// CardsResponse wraps a selection result for the study endpoint.
type CardsResponse struct {
	Cards   []study.StudyCard `json:"cards"`
	Message string            `json:"message,omitempty"`
}

// CountsResponse reports per-deck new/due counts for the deck picker.
type CountsResponse struct {
	Deck string `json:"deck"`
	New  int    `json:"new"`
	Due  int    `json:"due"`
}

// ForecastResponse projects due-card counts over the coming days.
type ForecastResponse struct {
	Days     []study.ForecastDay `json:"days"`
	MaxCount int                 `json:"max_count"`
}
