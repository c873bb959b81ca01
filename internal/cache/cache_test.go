package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// fakeClock is a settable time source for TTL tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(clock *fakeClock) *Cache {
	return New(Options{Clock: clock.Now})
}

func record(front string, due time.Time) *domain.ReviewRecord {
	return &domain.ReviewRecord{
		UserID:     7,
		DeckType:   domain.DeckHiragana,
		Front:      front,
		Back:       front,
		Interval:   1,
		Repetition: 0,
		EaseFactor: 2.5,
		DueDate:    due,
	}
}

func TestRecordTTL(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)

	c.PutRecords(7, domain.DeckHiragana, []*domain.ReviewRecord{record("あ", clock.now)})

	// Just inside the TTL: hit.
	clock.Advance(DefaultRecordTTL - time.Second)
	got, ok := c.GetRecords(7, domain.DeckHiragana)
	require.True(t, ok)
	require.Len(t, got, 1)

	// Just past the TTL: miss.
	clock.Advance(2 * time.Second)
	_, ok = c.GetRecords(7, domain.DeckHiragana)
	assert.False(t, ok)
}

func TestPutRecordsReplacesCollection(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)

	c.PutRecords(7, domain.DeckHiragana, []*domain.ReviewRecord{record("あ", clock.now), record("い", clock.now)})
	c.PutRecords(7, domain.DeckHiragana, []*domain.ReviewRecord{record("う", clock.now)})

	got, ok := c.GetRecords(7, domain.DeckHiragana)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "う", got[0].Front)
}

func TestPutOneRecord(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	t.Run("upserts into a live collection", func(t *testing.T) {
		t.Parallel()
		c := newTestCache(clock)
		c.PutRecords(7, domain.DeckHiragana, []*domain.ReviewRecord{record("あ", clock.now)})

		updated := record("あ", clock.now.AddDate(0, 0, 6))
		updated.Repetition = 2
		c.PutOneRecord(7, domain.DeckHiragana, updated)
		c.PutOneRecord(7, domain.DeckHiragana, record("い", clock.now))

		got, ok := c.GetRecords(7, domain.DeckHiragana)
		require.True(t, ok)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Repetition)
		assert.Equal(t, "い", got[1].Front)
	})

	t.Run("no-op without a live collection", func(t *testing.T) {
		t.Parallel()
		c := newTestCache(clock)
		c.PutOneRecord(7, domain.DeckHiragana, record("あ", clock.now))

		_, ok := c.GetRecords(7, domain.DeckHiragana)
		assert.False(t, ok)
	})
}

func TestAggregateAndProfileTTLClasses(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)

	c.PutAggregate(7, domain.DeckKanji, Aggregate{NewCount: 40, DueCount: 2})
	c.PutProfile(7, Profile{Email: "rin@example.com"})

	clock.Advance(DefaultAggregateTTL + time.Second)

	_, ok := c.GetAggregate(7, domain.DeckKanji)
	assert.False(t, ok, "aggregate should expire on the short TTL")

	profile, ok := c.GetProfile(7)
	require.True(t, ok, "profile TTL is longer")
	assert.Equal(t, "rin@example.com", profile.Email)
}

func TestInvalidateUser(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)

	c.PutRecords(7, domain.DeckHiragana, []*domain.ReviewRecord{record("あ", clock.now)})
	c.PutRecords(8, domain.DeckHiragana, []*domain.ReviewRecord{record("あ", clock.now)})
	c.PutAggregate(7, domain.DeckKanji, Aggregate{NewCount: 1})
	c.PutProfile(7, Profile{Email: "rin@example.com"})

	c.InvalidateUser(7)

	_, ok := c.GetRecords(7, domain.DeckHiragana)
	assert.False(t, ok)
	_, ok = c.GetAggregate(7, domain.DeckKanji)
	assert.False(t, ok)
	_, ok = c.GetProfile(7)
	assert.False(t, ok)

	// Other users are untouched.
	_, ok = c.GetRecords(8, domain.DeckHiragana)
	assert.True(t, ok)
}

func TestEvictExpired(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)

	c.PutRecords(7, domain.DeckHiragana, []*domain.ReviewRecord{record("あ", clock.now)})
	clock.Advance(DefaultRecordTTL + time.Second)
	c.PutRecords(7, domain.DeckKatakana, []*domain.ReviewRecord{record("ア", clock.now)})

	c.EvictExpired()

	_, ok := c.GetRecords(7, domain.DeckHiragana)
	assert.False(t, ok)
	_, ok = c.GetRecords(7, domain.DeckKatakana)
	assert.True(t, ok)
}
