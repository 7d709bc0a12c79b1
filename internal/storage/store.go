package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

var (
	// ErrSessionNotFound is returned by Load for a user without a stored session
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCorrupt is returned together with a repaired session when a
	// stored record could not be decoded as-is
	ErrSessionCorrupt = errors.New("session record corrupt")

	// ErrCatalogInvalid wraps every catalog validation failure
	ErrCatalogInvalid = errors.New("invalid catalog")
)

// SessionStore persists one session record per user id
type SessionStore interface {
	Load(ctx context.Context, userID string) (*models.Session, error)
	Save(ctx context.Context, userID string, session models.Session) error
	Ping(ctx context.Context) error
}

// AnalyticsStore keeps recorded interactions for reporting
type AnalyticsStore interface {
	RecordEvent(ctx context.Context, event *models.AnalyticsEvent) error
	// ListEvents returns events with from <= timestamp <= to, oldest first
	ListEvents(ctx context.Context, from, to time.Time) ([]*models.AnalyticsEvent, error)
	// PruneEvents drops everything but the newest keep events
	PruneEvents(ctx context.Context, keep int) (int64, error)
}
