package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

// MemoryStore holds sessions and analytics in memory. Session records are
// kept encoded so callers never share state with the store.
type MemoryStore struct {
	sessions map[string][]byte
	events   []*models.AnalyticsEvent

	// Mutexes for thread safety
	sessionMu sync.RWMutex
	eventMu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
	}
}

// Session operations
func (m *MemoryStore) Load(ctx context.Context, userID string) (*models.Session, error) {
	m.sessionMu.RLock()
	raw, exists := m.sessions[userID]
	m.sessionMu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	session, err := DecodeSession(raw)
	return &session, err
}

func (m *MemoryStore) Save(ctx context.Context, userID string, session models.Session) error {
	raw, err := EncodeSession(session)
	if err != nil {
		return err
	}

	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	m.sessions[userID] = raw
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// SessionCount returns how many users have a stored session
func (m *MemoryStore) SessionCount() int {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	return len(m.sessions)
}

// Analytics operations
func (m *MemoryStore) RecordEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	m.eventMu.Lock()
	defer m.eventMu.Unlock()

	ev := *event
	// keep events ordered by timestamp even if writers race
	i := sort.Search(len(m.events), func(i int) bool {
		return m.events[i].Timestamp.After(ev.Timestamp)
	})
	m.events = append(m.events, nil)
	copy(m.events[i+1:], m.events[i:])
	m.events[i] = &ev
	return nil
}

func (m *MemoryStore) ListEvents(ctx context.Context, from, to time.Time) ([]*models.AnalyticsEvent, error) {
	m.eventMu.RLock()
	defer m.eventMu.RUnlock()

	var events []*models.AnalyticsEvent
	for _, ev := range m.events {
		if ev.Timestamp.Before(from) || ev.Timestamp.After(to) {
			continue
		}
		cp := *ev
		events = append(events, &cp)
	}
	return events, nil
}

func (m *MemoryStore) PruneEvents(ctx context.Context, keep int) (int64, error) {
	m.eventMu.Lock()
	defer m.eventMu.Unlock()

	if keep < 0 || len(m.events) <= keep {
		return 0, nil
	}
	dropped := len(m.events) - keep
	m.events = append([]*models.AnalyticsEvent(nil), m.events[dropped:]...)
	return int64(dropped), nil
}
