package srs

import (
	"math"
	"time"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// Grade is the quality score a user assigns to a review. The grading UI maps
// its four buttons to fixed scores: Again=1, Hard=3, Good=4, Easy=5.
type Grade int

// Grades used by the study UI.
const (
	GradeAgain Grade = 1
	GradeHard  Grade = 3
	GradeGood  Grade = 4
	GradeEasy  Grade = 5
)

// Valid reports whether the grade is within the SM-2 quality score range.
func (g Grade) Valid() bool {
	return g >= 1 && g <= 5
}

// calculateNewEaseFactor applies the SM-2 ease factor update for the given
// quality score and clamps the result to the configured limits.
//
// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
func calculateNewEaseFactor(currentEF float64, grade Grade, params *Params) float64 {
	q := float64(grade)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// nextSchedule computes the new repetition count and interval from the
// pre-grade state. A failing grade (score below 3) resets the card; a
// qualifying grade advances it through the fixed first and second intervals
// before interval growth by ease factor takes over.
func nextSchedule(interval, repetition int, easeFactor float64, grade Grade, params *Params) (newInterval, newRepetition int) {
	if grade < 3 {
		return params.FirstInterval, 0
	}

	newRepetition = repetition + 1
	switch newRepetition {
	case 1:
		newInterval = params.FirstInterval
	case 2:
		newInterval = params.SecondInterval
	default:
		newInterval = int(math.Round(float64(interval) * easeFactor))
	}
	return newInterval, newRepetition
}

// calculateNextRecord creates a new ReviewRecord with updated scheduling
// state for the given grade. The input record is not modified; grading is
// pure and deterministic given (interval, repetition, easeFactor, grade, now).
//
// The interval calculation uses the pre-grade ease factor, per SM-2: the
// ease adjustment earned by this review only affects the following one.
func calculateNextRecord(record *domain.ReviewRecord, grade Grade, now time.Time, params *Params) *domain.ReviewRecord {
	newRecord := *record

	newRecord.Interval, newRecord.Repetition = nextSchedule(
		record.Interval,
		record.Repetition,
		record.EaseFactor,
		grade,
		params,
	)
	newRecord.EaseFactor = calculateNewEaseFactor(record.EaseFactor, grade, params)
	newRecord.DueDate = now.AddDate(0, 0, newRecord.Interval)
	newRecord.LastStudied = now

	return &newRecord
}
