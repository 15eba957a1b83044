package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Sheeddhartho/Secura/internal/errs"
	"github.com/Sheeddhartho/Secura/internal/model"
)

// FaceStore persists the per-tenant face registry.
type FaceStore interface {
	List(ctx context.Context, tenantID string) ([]model.Face, error)
	Create(ctx context.Context, face *model.Face) error
	Delete(ctx context.Context, tenantID, faceID string) error
	ReplaceAll(ctx context.Context, tenantID string, faces []model.Face) error
}

// FaceHandler handles face registry CRUD. The descriptors come from the
// browser-side recognition library and stay opaque here.
type FaceHandler struct {
	faces FaceStore
}

// NewFaceHandler creates a face handler.
func NewFaceHandler(faces FaceStore) *FaceHandler {
	return &FaceHandler{faces: faces}
}

// List godoc
// GET /api/faces
func (h *FaceHandler) List(c *gin.Context) {
	faces, err := h.faces.List(c.Request.Context(), TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch faces"})
		return
	}
	out := make([]model.FaceView, 0, len(faces))
	for i := range faces {
		out = append(out, toFaceView(&faces[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// POST /api/faces
func (h *FaceHandler) Create(c *gin.Context) {
	var req model.CreateFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	face := newFace(TenantID(c), req)
	if err := h.faces.Create(c.Request.Context(), face); err != nil {
		if errors.Is(err, errs.ErrDuplicateFace) {
			c.JSON(http.StatusConflict, gin.H{"error": "a person named '" + req.Name + "' is already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save face"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "face": toFaceView(face)})
}

// Delete godoc
// DELETE /api/faces/:id
func (h *FaceHandler) Delete(c *gin.Context) {
	err := h.faces.Delete(c.Request.Context(), TenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrFaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "face not found or you do not have permission"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete face"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Import godoc
// POST /api/faces/import — replaces the tenant's entire registry.
func (h *FaceHandler) Import(c *gin.Context) {
	var req model.ImportFacesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data format"})
		return
	}
	tenantID := TenantID(c)
	faces := make([]model.Face, 0, len(req.Faces))
	for _, f := range req.Faces {
		faces = append(faces, *newFace(tenantID, f))
	}
	if err := h.faces.ReplaceAll(c.Request.Context(), tenantID, faces); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func newFace(tenantID string, req model.CreateFaceRequest) *model.Face {
	action := req.Action
	if action == "" {
		action = model.ActionAlert
	}
	return &model.Face{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Name:       req.Name,
		Descriptor: pq.Float64Array(req.Descriptor),
		Action:     action,
	}
}

func toFaceView(f *model.Face) model.FaceView {
	return model.FaceView{
		ID:         f.ID,
		Name:       f.Name,
		Descriptor: []float64(f.Descriptor),
		Action:     f.Action,
	}
}
