package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/storage"
)

// SessionStats summarizes recent session activity
type SessionStats struct {
	ActiveUsers     int `json:"active_users"`
	ProcessingUsers int `json:"processing_users"`
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// SessionManager loads and saves sessions and serializes the handling of
// messages from the same user
type SessionManager struct {
	store      storage.SessionStore
	log        *logger.Logger
	activeTTL  time.Duration
	mu         sync.Mutex
	locks      map[string]*userLock
	lastActive map[string]time.Time
}

// NewSessionManager creates a new session manager. Users seen within
// activeTTL count as active.
func NewSessionManager(store storage.SessionStore, log *logger.Logger, activeTTL time.Duration) *SessionManager {
	if activeTTL <= 0 {
		activeTTL = DefaultIdleTimeout
	}
	return &SessionManager{
		store:      store,
		log:        log,
		activeTTL:  activeTTL,
		locks:      make(map[string]*userLock),
		lastActive: make(map[string]time.Time),
	}
}

// Lock blocks until the caller holds the user's lock and returns the
// function that releases it. Locks are dropped once nobody waits on them.
func (sm *SessionManager) Lock(userID string) func() {
	sm.mu.Lock()
	l, ok := sm.locks[userID]
	if !ok {
		l = &userLock{}
		sm.locks[userID] = l
	}
	l.refs++
	sm.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			sm.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(sm.locks, userID)
			}
			sm.mu.Unlock()
		})
	}
}

// Load returns the user's session. First-time users get a fresh session and
// a damaged record is replaced by its repaired form after logging.
func (sm *SessionManager) Load(ctx context.Context, userID string) (models.Session, error) {
	s, err := sm.store.Load(ctx, userID)
	switch {
	case err == nil:
		return *s, nil
	case errors.Is(err, storage.ErrSessionNotFound):
		return models.NewSession(), nil
	case errors.Is(err, storage.ErrSessionCorrupt) && s != nil:
		sm.log.Warn("⚠️ Repaired corrupt session", "user_id", userID, "error", err)
		return *s, nil
	default:
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
}

// Save persists the session and marks the user active
func (sm *SessionManager) Save(ctx context.Context, userID string, s models.Session) error {
	if err := sm.store.Save(ctx, userID, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sm.mu.Lock()
	sm.lastActive[userID] = time.Now()
	sm.mu.Unlock()
	return nil
}

// Ping checks the backing store
func (sm *SessionManager) Ping(ctx context.Context) error {
	return sm.store.Ping(ctx)
}

// GetSessionStats reports how many users were active recently and how many
// messages are being handled right now. Stale activity entries are dropped.
func (sm *SessionManager) GetSessionStats(now time.Time) SessionStats {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for userID, at := range sm.lastActive {
		if now.Sub(at) > sm.activeTTL {
			delete(sm.lastActive, userID)
		}
	}
	return SessionStats{
		ActiveUsers:     len(sm.lastActive),
		ProcessingUsers: len(sm.locks),
	}
}
