// Package cache provides a time-bounded in-process mirror of review records
// and per-deck aggregate counts, avoiding redundant remote reads during a
// study session. Cached values are derived, never authoritative: anything
// here can be reconstructed from the review record and card template stores.
package cache

import (
	"sync"
	"time"

	"github.com/karuta-app/karuta-api/internal/domain"
)

// TTL classes. Review records change on every grade, so their window is
// short; profile data is nearly static.
const (
	DefaultRecordTTL    = 5 * time.Minute
	DefaultAggregateTTL = 2 * time.Minute
	DefaultProfileTTL   = 30 * time.Minute
)

// Aggregate holds cached per-deck counts for a user.
type Aggregate struct {
	NewCount int
	DueCount int
}

// Profile holds cached profile data for a user. The scheduler only needs
// the email for display, but the type leaves room for more.
type Profile struct {
	Email string
}

// Options overrides the TTL classes. Zero values keep the defaults.
type Options struct {
	RecordTTL    time.Duration
	AggregateTTL time.Duration
	ProfileTTL   time.Duration

	// Clock returns the current time; injectable for tests.
	Clock func() time.Time
}

type deckKey struct {
	userID int64
	deck   domain.DeckType
}

type recordEntry struct {
	records  map[string]*domain.ReviewRecord // keyed by front
	order    []string                        // insertion order of fronts
	cachedAt time.Time
}

type aggregateEntry struct {
	aggregate Aggregate
	cachedAt  time.Time
}

type profileEntry struct {
	profile  Profile
	cachedAt time.Time
}

// Cache is a read-through/write-through TTL cache keyed by (userID, deck)
// for review record collections and aggregates, and by userID for profiles.
// Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	records    map[deckKey]*recordEntry
	aggregates map[deckKey]*aggregateEntry
	profiles   map[int64]*profileEntry

	recordTTL    time.Duration
	aggregateTTL time.Duration
	profileTTL   time.Duration
	clock        func() time.Time
}

// New creates a cache with the given options.
func New(opts Options) *Cache {
	c := &Cache{
		records:      make(map[deckKey]*recordEntry),
		aggregates:   make(map[deckKey]*aggregateEntry),
		profiles:     make(map[int64]*profileEntry),
		recordTTL:    opts.RecordTTL,
		aggregateTTL: opts.AggregateTTL,
		profileTTL:   opts.ProfileTTL,
		clock:        opts.Clock,
	}
	if c.recordTTL <= 0 {
		c.recordTTL = DefaultRecordTTL
	}
	if c.aggregateTTL <= 0 {
		c.aggregateTTL = DefaultAggregateTTL
	}
	if c.profileTTL <= 0 {
		c.profileTTL = DefaultProfileTTL
	}
	if c.clock == nil {
		c.clock = func() time.Time { return time.Now().UTC() }
	}
	return c
}

// GetRecords returns the cached record collection for (userID, deck), or
// (nil, false) when the entry is absent or older than the record TTL.
// The returned slice preserves the order records were stored in.
func (c *Cache) GetRecords(userID int64, deck domain.DeckType) ([]*domain.ReviewRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.records[deckKey{userID, deck}]
	if !ok || c.expired(entry.cachedAt, c.recordTTL) {
		return nil, false
	}

	out := make([]*domain.ReviewRecord, 0, len(entry.order))
	for _, front := range entry.order {
		out = append(out, entry.records[front])
	}
	return out, true
}

// PutRecords replaces the entire cached collection for (userID, deck).
// Delete-then-insert semantics: anything previously cached under the key is
// discarded, not merged.
func (c *Cache) PutRecords(userID int64, deck domain.DeckType, records []*domain.ReviewRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &recordEntry{
		records:  make(map[string]*domain.ReviewRecord, len(records)),
		order:    make([]string, 0, len(records)),
		cachedAt: c.clock(),
	}
	for _, r := range records {
		if _, seen := entry.records[r.Front]; !seen {
			entry.order = append(entry.order, r.Front)
		}
		entry.records[r.Front] = r
	}
	c.records[deckKey{userID, deck}] = entry
}

// PutOneRecord upserts a single record into the cached collection, keyed by
// front. Used after grading so one commit does not invalidate the whole
// collection. A miss (expired or absent collection) is a no-op; the next
// read will refetch from the store anyway.
func (c *Cache) PutOneRecord(userID int64, deck domain.DeckType, record *domain.ReviewRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.records[deckKey{userID, deck}]
	if !ok || c.expired(entry.cachedAt, c.recordTTL) {
		return
	}
	if _, seen := entry.records[record.Front]; !seen {
		entry.order = append(entry.order, record.Front)
	}
	entry.records[record.Front] = record
}

// GetAggregate returns the cached per-deck counts, or (zero, false) on a miss.
func (c *Cache) GetAggregate(userID int64, deck domain.DeckType) (Aggregate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.aggregates[deckKey{userID, deck}]
	if !ok || c.expired(entry.cachedAt, c.aggregateTTL) {
		return Aggregate{}, false
	}
	return entry.aggregate, true
}

// PutAggregate stores per-deck counts for a user.
func (c *Cache) PutAggregate(userID int64, deck domain.DeckType, aggregate Aggregate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aggregates[deckKey{userID, deck}] = &aggregateEntry{aggregate: aggregate, cachedAt: c.clock()}
}

// GetProfile returns the cached profile for a user, or (zero, false) on a miss.
func (c *Cache) GetProfile(userID int64) (Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.profiles[userID]
	if !ok || c.expired(entry.cachedAt, c.profileTTL) {
		return Profile{}, false
	}
	return entry.profile, true
}

// PutProfile stores profile data for a user.
func (c *Cache) PutProfile(userID int64, profile Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[userID] = &profileEntry{profile: profile, cachedAt: c.clock()}
}

// InvalidateUser removes all cached entries for a user across every deck,
// including aggregates and profile data. Used on sign-out.
func (c *Cache) InvalidateUser(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.records {
		if key.userID == userID {
			delete(c.records, key)
		}
	}
	for key := range c.aggregates {
		if key.userID == userID {
			delete(c.aggregates, key)
		}
	}
	delete(c.profiles, userID)
}

// EvictExpired removes entries older than their TTL class. Safe to run
// opportunistically or on a timer; expired entries are also treated as
// misses on read, so eviction only reclaims memory.
func (c *Cache) EvictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.records {
		if c.expired(entry.cachedAt, c.recordTTL) {
			delete(c.records, key)
		}
	}
	for key, entry := range c.aggregates {
		if c.expired(entry.cachedAt, c.aggregateTTL) {
			delete(c.aggregates, key)
		}
	}
	for userID, entry := range c.profiles {
		if c.expired(entry.cachedAt, c.profileTTL) {
			delete(c.profiles, userID)
		}
	}
}

func (c *Cache) expired(cachedAt time.Time, ttl time.Duration) bool {
	return c.clock().Sub(cachedAt) >= ttl
}
