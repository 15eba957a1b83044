package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sheeddhartho/Secura/internal/errs"
	"github.com/Sheeddhartho/Secura/internal/model"
)

// SettingsService is the write-through settings cache as seen by HTTP.
type SettingsService interface {
	Get(ctx context.Context, tenantID string) (model.Settings, error)
	Set(ctx context.Context, tenantID string, alertThreshold int) error
}

// SettingsHandler handles per-tenant alert settings.
type SettingsHandler struct {
	svc SettingsService
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(svc SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get godoc
// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// Update godoc
// PUT /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold value"})
		return
	}
	if err := h.svc.Set(c.Request.Context(), TenantID(c), *req.AlertThreshold); err != nil {
		if errors.Is(err, errs.ErrInvalidThreshold) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold value"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
