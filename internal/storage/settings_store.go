package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sheeddhartho/Secura/internal/model"
)

// SettingsStore persists per-tenant alert settings.
type SettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore creates a settings store.
func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Load returns the tenant's settings row, creating and persisting a
// default one when none exists yet.
func (s *SettingsStore) Load(ctx context.Context, tenantID string) (*model.TenantSettings, error) {
	var rec model.TenantSettings
	err := s.db.WithContext(ctx).First(&rec, "tenant_id = ?", tenantID).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	rec = model.TenantSettings{TenantID: tenantID, AlertThreshold: model.DefaultAlertThreshold}
	// DoNothing keeps a concurrent first-access race harmless.
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save upserts the tenant's threshold. Validation happens in the cache
// layer; the store writes whatever it is given.
func (s *SettingsStore) Save(ctx context.Context, tenantID string, alertThreshold int) (*model.TenantSettings, error) {
	rec := model.TenantSettings{TenantID: tenantID, AlertThreshold: alertThreshold}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"alert_threshold", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
