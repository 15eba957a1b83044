package model

import (
	"time"

	"github.com/lib/pq"
)

// Face — a registered face descriptor owned by one tenant (GORM).
// Name is unique per tenant; the descriptor itself is produced by the
// browser-side recognition library and stored opaque.
type Face struct {
	ID         string          `gorm:"type:uuid;primaryKey"`
	TenantID   string          `gorm:"type:uuid;not null;uniqueIndex:idx_faces_tenant_name"`
	Name       string          `gorm:"size:128;not null;uniqueIndex:idx_faces_tenant_name"`
	Descriptor pq.Float64Array `gorm:"type:float8[];not null"`
	Action     Action          `gorm:"size:10;not null;default:alert"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (Face) TableName() string { return "faces" }

// AlertLog — one detection event, persisted for audit (GORM).
type AlertLog struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	TenantID    string    `gorm:"type:uuid;not null;index:idx_alert_logs_tenant_ts"`
	SubjectName string    `gorm:"size:128;not null"`
	Action      Action    `gorm:"size:10;not null"`
	Timestamp   time.Time `gorm:"not null;index:idx_alert_logs_tenant_ts,sort:desc"`
}

func (AlertLog) TableName() string { return "alert_logs" }

// TenantSettings — per-tenant alert configuration (GORM). One row per
// tenant, created lazily with the default threshold on first access.
type TenantSettings struct {
	TenantID       string    `gorm:"type:uuid;primaryKey"`
	AlertThreshold int       `gorm:"not null;default:100"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (TenantSettings) TableName() string { return "tenant_settings" }
