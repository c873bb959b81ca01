package study

import (
	"context"
	"time"

	"github.com/karuta-app/karuta-api/internal/domain"
	"github.com/karuta-app/karuta-api/internal/session"
)

// DefaultForecastWindow is the number of days covered by a forecast when
// the caller does not ask for a specific window.
const DefaultForecastWindow = 14

// ForecastDay is one day of the review forecast.
type ForecastDay struct {
	Date  string `json:"date"` // YYYY-MM-DD in the study timezone
	Count int    `json:"count"`
}

// Forecast projects due-card counts over a future window for display.
type Forecast struct {
	Days     []ForecastDay `json:"days"`
	MaxCount int           `json:"max_count"` // presentation scaling only
}

// ForecastDue counts, for each of the next windowDays calendar days (today
// inclusive, in the study timezone), the review records across all decks
// whose due date falls on that day. The returned array is dense: days with
// nothing due carry an explicit zero.
func (s *Service) ForecastDue(ctx context.Context, externalID string, windowDays int) (*Forecast, error) {
	if externalID == "" {
		return nil, ErrEmptyUser
	}
	if windowDays <= 0 {
		windowDays = DefaultForecastWindow
	}

	userID, err := s.resolver.ResolveNumericUserID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().In(session.StudyZone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, session.StudyZone)

	forecast := &Forecast{Days: make([]ForecastDay, windowDays)}
	for i := range forecast.Days {
		forecast.Days[i].Date = today.AddDate(0, 0, i).Format("2006-01-02")
	}

	for _, deckType := range domain.AllDeckTypes {
		for _, r := range s.loadRecords(ctx, userID, deckType) {
			due := r.DueDate.In(session.StudyZone)
			dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, session.StudyZone)
			idx := int(dueDay.Sub(today).Hours() / 24)
			if idx < 0 || idx >= windowDays {
				continue
			}
			forecast.Days[idx].Count++
			if forecast.Days[idx].Count > forecast.MaxCount {
				forecast.MaxCount = forecast.Days[idx].Count
			}
		}
	}

	return forecast, nil
}
