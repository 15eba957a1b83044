package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Sheeddhartho/Secura/internal/errs"
	"github.com/Sheeddhartho/Secura/internal/model"
)

// FaceStore persists the per-tenant face registry.
type FaceStore struct {
	db *gorm.DB
}

// NewFaceStore creates a face store.
func NewFaceStore(db *gorm.DB) *FaceStore {
	return &FaceStore{db: db}
}

// List returns all faces registered by the tenant.
func (s *FaceStore) List(ctx context.Context, tenantID string) ([]model.Face, error) {
	var faces []model.Face
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name").Find(&faces).Error; err != nil {
		return nil, err
	}
	return faces, nil
}

// Create inserts a face; a duplicate (tenant_id, name) yields
// errs.ErrDuplicateFace.
func (s *FaceStore) Create(ctx context.Context, face *model.Face) error {
	if err := s.db.WithContext(ctx).Create(face).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrDuplicateFace
		}
		return err
	}
	return nil
}

// Delete removes a face owned by the tenant. Faces of other tenants are
// invisible here, so a cross-tenant id behaves like a missing one.
func (s *FaceStore) Delete(ctx context.Context, tenantID, faceID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", faceID, tenantID).Delete(&model.Face{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrFaceNotFound
	}
	return nil
}

// ReplaceAll swaps the tenant's whole registry in one transaction.
func (s *FaceStore) ReplaceAll(ctx context.Context, tenantID string, faces []model.Face) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&model.Face{}).Error; err != nil {
			return err
		}
		if len(faces) == 0 {
			return nil
		}
		return tx.Create(&faces).Error
	})
}
