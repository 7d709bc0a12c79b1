package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

// DatabaseStore persists sessions and analytics through gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Migrate creates or updates the tables this store uses
func (s *DatabaseStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.ChatSession{},
		&models.AnalyticsEvent{},
	)
}

// Session operations
func (s *DatabaseStore) Load(ctx context.Context, userID string) (*models.Session, error) {
	var rec models.ChatSession
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	session, err := DecodeSession(rec.Data)
	return &session, err
}

func (s *DatabaseStore) Save(ctx context.Context, userID string, session models.Session) error {
	raw, err := EncodeSession(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	rec := models.ChatSession{
		UserID:          userID,
		State:           string(session.State),
		Data:            datatypes.JSON(raw),
		LastInteraction: session.LastInteraction,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "data", "last_interaction", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SessionCount returns how many users have a stored session
func (s *DatabaseStore) SessionCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ChatSession{}).Count(&n).Error
	return n, err
}

// Analytics operations
func (s *DatabaseStore) RecordEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("record analytics event: %w", err)
	}
	return nil
}

func (s *DatabaseStore) ListEvents(ctx context.Context, from, to time.Time) ([]*models.AnalyticsEvent, error) {
	var events []*models.AnalyticsEvent
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", from, to).
		Order("timestamp ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list analytics events: %w", err)
	}
	return events, nil
}

func (s *DatabaseStore) PruneEvents(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, nil
	}
	db := s.db.WithContext(ctx)

	var res *gorm.DB
	if keep == 0 {
		res = db.Where("1 = 1").Delete(&models.AnalyticsEvent{})
	} else {
		newest := db.Model(&models.AnalyticsEvent{}).
			Select("id").
			Order("timestamp DESC").
			Limit(keep)
		res = db.Where("id NOT IN (?)", newest).Delete(&models.AnalyticsEvent{})
	}
	if res.Error != nil {
		return 0, fmt.Errorf("prune analytics events: %w", res.Error)
	}
	return res.RowsAffected, nil
}
