package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sheeddhartho/Secura/internal/errs"
	"github.com/Sheeddhartho/Secura/internal/model"
)

type fakeFaceStore struct {
	faces []model.Face
}

func (f *fakeFaceStore) List(_ context.Context, tenantID string) ([]model.Face, error) {
	var out []model.Face
	for _, face := range f.faces {
		if face.TenantID == tenantID {
			out = append(out, face)
		}
	}
	return out, nil
}

func (f *fakeFaceStore) Create(_ context.Context, face *model.Face) error {
	for _, existing := range f.faces {
		if existing.TenantID == face.TenantID && existing.Name == face.Name {
			return errs.ErrDuplicateFace
		}
	}
	f.faces = append(f.faces, *face)
	return nil
}

func (f *fakeFaceStore) Delete(_ context.Context, tenantID, faceID string) error {
	for i, face := range f.faces {
		if face.ID == faceID && face.TenantID == tenantID {
			f.faces = append(f.faces[:i], f.faces[i+1:]...)
			return nil
		}
	}
	return errs.ErrFaceNotFound
}

func (f *fakeFaceStore) ReplaceAll(_ context.Context, tenantID string, faces []model.Face) error {
	var kept []model.Face
	for _, face := range f.faces {
		if face.TenantID != tenantID {
			kept = append(kept, face)
		}
	}
	f.faces = append(kept, faces...)
	return nil
}

func setupFaceRouter(store *fakeFaceStore) http.Handler {
	gin.SetMode(gin.TestMode)
	h := NewFaceHandler(store)
	r := gin.New()
	api := r.Group("/api", RequireSession(fakeResolver{"tok": "tenant-1"}))
	api.GET("/faces", h.List)
	api.POST("/faces", h.Create)
	api.DELETE("/faces/:id", h.Delete)
	api.POST("/faces/import", h.Import)
	return r
}

func TestFaces_CreateDefaultsToAlert(t *testing.T) {
	store := &fakeFaceStore{}
	r := setupFaceRouter(store)

	w := doJSON(t, r, http.MethodPost, "/api/faces", `{"name":"Bob","descriptor":[0.1,0.2]}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.faces, 1)
	assert.Equal(t, model.ActionAlert, store.faces[0].Action)
	assert.Equal(t, "tenant-1", store.faces[0].TenantID)
}

func TestFaces_DuplicateNameConflicts(t *testing.T) {
	store := &fakeFaceStore{}
	r := setupFaceRouter(store)

	w := doJSON(t, r, http.MethodPost, "/api/faces", `{"name":"Bob","descriptor":[0.1],"action":"allow"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/faces", `{"name":"Bob","descriptor":[0.3],"action":"alert"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, store.faces, 1)
}

func TestFaces_ListIsTenantScoped(t *testing.T) {
	store := &fakeFaceStore{faces: []model.Face{
		{ID: "1", TenantID: "tenant-1", Name: "Bob", Descriptor: []float64{0.1}, Action: model.ActionAlert},
		{ID: "2", TenantID: "tenant-2", Name: "Eve", Descriptor: []float64{0.2}, Action: model.ActionAlert},
	}}
	r := setupFaceRouter(store)

	w := doJSON(t, r, http.MethodGet, "/api/faces", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var out []model.FaceView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Bob", out[0].Name)
}

func TestFaces_DeleteOtherTenantsFaceIs404(t *testing.T) {
	store := &fakeFaceStore{faces: []model.Face{
		{ID: "2", TenantID: "tenant-2", Name: "Eve", Descriptor: []float64{0.2}, Action: model.ActionAlert},
	}}
	r := setupFaceRouter(store)

	w := doJSON(t, r, http.MethodDelete, "/api/faces/2", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, store.faces, 1)
}

func TestFaces_ImportReplacesRegistry(t *testing.T) {
	store := &fakeFaceStore{faces: []model.Face{
		{ID: "1", TenantID: "tenant-1", Name: "Old", Descriptor: []float64{0.1}, Action: model.ActionAlert},
	}}
	r := setupFaceRouter(store)

	w := doJSON(t, r, http.MethodPost, "/api/faces/import",
		`{"faces":[{"name":"New1","descriptor":[0.5],"action":"allow"},{"name":"New2","descriptor":[0.6]}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.faces, 2)
	assert.Equal(t, "New1", store.faces[0].Name)
	assert.Equal(t, model.ActionAlert, store.faces[1].Action)
}
