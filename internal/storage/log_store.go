package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/Sheeddhartho/Secura/internal/model"
)

// AlertLogStore persists detection events for audit.
type AlertLogStore struct {
	db *gorm.DB
}

// NewAlertLogStore creates an alert log store.
func NewAlertLogStore(db *gorm.DB) *AlertLogStore {
	return &AlertLogStore{db: db}
}

// Create appends one audit record.
func (s *AlertLogStore) Create(ctx context.Context, entry *model.AlertLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// Recent returns the newest entries for the tenant, newest first.
func (s *AlertLogStore) Recent(ctx context.Context, tenantID string, limit int) ([]model.AlertLog, error) {
	var entries []model.AlertLog
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
