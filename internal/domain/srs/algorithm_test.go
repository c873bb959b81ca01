package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karuta-app/karuta-api/internal/domain"
)

func TestNextSchedule(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name         string
		interval     int
		repetition   int
		ef           float64
		grade        Grade
		wantInterval int
		wantRep      int
	}{
		{
			name:         "Again resets repetition and interval",
			interval:     30,
			repetition:   5,
			ef:           2.5,
			grade:        GradeAgain,
			wantInterval: 1,
			wantRep:      0,
		},
		{
			name:         "score 2 also counts as failure",
			interval:     12,
			repetition:   3,
			ef:           2.1,
			grade:        Grade(2),
			wantInterval: 1,
			wantRep:      0,
		},
		{
			name:         "first qualifying review uses one day",
			interval:     1,
			repetition:   0,
			ef:           2.5,
			grade:        GradeEasy,
			wantInterval: 1,
			wantRep:      1,
		},
		{
			name:         "second qualifying review uses six days",
			interval:     1,
			repetition:   1,
			ef:           2.5,
			grade:        GradeGood,
			wantInterval: 6,
			wantRep:      2,
		},
		{
			name:         "third review grows by ease factor",
			interval:     6,
			repetition:   2,
			ef:           2.5,
			grade:        GradeGood,
			wantInterval: 15, // round(6 * 2.5)
			wantRep:      3,
		},
		{
			name:         "interval rounds to nearest day",
			interval:     10,
			repetition:   4,
			ef:           1.35,
			grade:        GradeHard,
			wantInterval: 14, // round(13.5)
			wantRep:      5,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotInterval, gotRep := nextSchedule(tc.interval, tc.repetition, tc.ef, tc.grade, params)
			assert.Equal(t, tc.wantInterval, gotInterval, "interval")
			assert.Equal(t, tc.wantRep, gotRep, "repetition")
		})
	}
}

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name  string
		ef    float64
		grade Grade
		want  float64
	}{
		{name: "perfect answer raises ease", ef: 2.0, grade: GradeEasy, want: 2.1},
		{name: "good answer keeps ease", ef: 2.0, grade: GradeGood, want: 2.0},
		{name: "hard answer lowers ease", ef: 2.0, grade: GradeHard, want: 2.0 - 0.14},
		{name: "failure lowers ease sharply", ef: 2.0, grade: GradeAgain, want: 2.0 - 0.54},
		{name: "ease never drops below the floor", ef: 1.3, grade: GradeAgain, want: 1.3},
		{name: "ease never exceeds the cap", ef: 2.5, grade: GradeEasy, want: 2.5},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := calculateNewEaseFactor(tc.ef, tc.grade, params)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

// Interval must never shrink across a run of qualifying reviews, and any
// failing grade must fully reset the card.
func TestGradingMonotonicity(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	record := domain.NewReviewRecord(42, domain.DeckHiragana, "あ", "a", now)
	prevInterval := 0
	for i := 0; i < 10; i++ {
		record = calculateNextRecord(record, GradeGood, now, params)
		require.GreaterOrEqual(t, record.Interval, prevInterval,
			"interval shrank on repetition %d", record.Repetition)
		prevInterval = record.Interval
		now = record.DueDate
	}

	record = calculateNextRecord(record, GradeAgain, now, params)
	assert.Equal(t, 0, record.Repetition)
	assert.Equal(t, 1, record.Interval)
}

func TestCalculateNextRecord(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("fresh card graded perfect", func(t *testing.T) {
		t.Parallel()
		fresh := domain.NewReviewRecord(1, domain.DeckHiragana, "か", "ka", now)
		got := calculateNextRecord(fresh, GradeEasy, now, params)

		assert.Equal(t, 1, got.Repetition)
		assert.Equal(t, 1, got.Interval)
		assert.Equal(t, now.AddDate(0, 0, 1), got.DueDate)
		assert.Equal(t, now, got.LastStudied)
	})

	t.Run("second perfect grade moves to six days", func(t *testing.T) {
		t.Parallel()
		fresh := domain.NewReviewRecord(1, domain.DeckHiragana, "か", "ka", now)
		first := calculateNextRecord(fresh, GradeEasy, now, params)
		second := calculateNextRecord(first, GradeEasy, now.AddDate(0, 0, 1), params)

		assert.Equal(t, 2, second.Repetition)
		assert.Equal(t, 6, second.Interval)
		assert.Equal(t, now.AddDate(0, 0, 7), second.DueDate)
	})

	t.Run("input record is not mutated", func(t *testing.T) {
		t.Parallel()
		fresh := domain.NewReviewRecord(1, domain.DeckKanji, "水", "water", now)
		before := *fresh
		_ = calculateNextRecord(fresh, GradeAgain, now, params)
		assert.Equal(t, before, *fresh)
	})
}
