package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/karuta-app/karuta-api/internal/store"
)

// Manager hands out per-user trackers, creating each lazily on first use.
type Manager struct {
	clock  Clock
	store  store.SessionStateStore
	logger *slog.Logger

	mu       sync.Mutex
	trackers map[int64]*Tracker
}

// NewManager creates a tracker manager. A nil store keeps all trackers
// memory-only; a nil clock uses the system clock.
func NewManager(clock Clock, stateStore store.SessionStateStore, log *slog.Logger) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		clock:    clock,
		store:    stateStore,
		logger:   log,
		trackers: make(map[int64]*Tracker),
	}
}

// ForUser returns the tracker for the given user, creating it on first use.
func (m *Manager) ForUser(ctx context.Context, userID int64) *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()

	tracker, ok := m.trackers[userID]
	if !ok {
		tracker = NewTracker(ctx, userID, m.clock, m.store, m.logger)
		m.trackers[userID] = tracker
	}
	return tracker
}
