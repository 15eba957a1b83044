package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/model"
	"github.com/Sheeddhartho/Secura/internal/service"
)

// memSettingsStore backs the real cache in tests, so validation and
// write-through run the production path.
type memSettingsStore struct {
	records map[string]int
}

func (m *memSettingsStore) Load(_ context.Context, tenantID string) (*model.TenantSettings, error) {
	n, ok := m.records[tenantID]
	if !ok {
		n = model.DefaultAlertThreshold
		m.records[tenantID] = n
	}
	return &model.TenantSettings{TenantID: tenantID, AlertThreshold: n}, nil
}

func (m *memSettingsStore) Save(_ context.Context, tenantID string, alertThreshold int) (*model.TenantSettings, error) {
	m.records[tenantID] = alertThreshold
	return &model.TenantSettings{TenantID: tenantID, AlertThreshold: alertThreshold}, nil
}

func setupSettingsRouter(records map[string]int) http.Handler {
	gin.SetMode(gin.TestMode)
	if records == nil {
		records = make(map[string]int)
	}
	cache := service.NewSettingsCache(&memSettingsStore{records: records}, zap.NewNop())
	h := NewSettingsHandler(cache)
	r := gin.New()
	api := r.Group("/api", RequireSession(fakeResolver{"tok": "tenant-1"}))
	api.GET("/settings", h.Get)
	api.PUT("/settings", h.Update)
	return r
}

func getThreshold(t *testing.T, r http.Handler) int {
	w := doJSON(t, r, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AlertThreshold int `json:"alert_threshold"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AlertThreshold
}

func TestSettings_GetReturnsThreshold(t *testing.T) {
	r := setupSettingsRouter(map[string]int{"tenant-1": 7})

	assert.Equal(t, 7, getThreshold(t, r))
}

func TestSettings_GetCreatesDefaultForNewTenant(t *testing.T) {
	records := make(map[string]int)
	r := setupSettingsRouter(records)

	assert.Equal(t, model.DefaultAlertThreshold, getThreshold(t, r))
	assert.Equal(t, model.DefaultAlertThreshold, records["tenant-1"])
}

func TestSettings_UpdateThenGetRoundTrips(t *testing.T) {
	r := setupSettingsRouter(nil)

	w := doJSON(t, r, http.MethodPut, "/api/settings", `{"alert_threshold":5}`)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 5, getThreshold(t, r))
}

func TestSettings_UpdateRejectsInvalidValues(t *testing.T) {
	r := setupSettingsRouter(map[string]int{"tenant-1": 7})

	for _, body := range []string{
		`{"alert_threshold":0}`,
		`{"alert_threshold":-1}`,
		`{}`,
		`{"alert_threshold":"high"}`,
	} {
		w := doJSON(t, r, http.MethodPut, "/api/settings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}

	// prior value survives every rejection
	assert.Equal(t, 7, getThreshold(t, r))
}

func TestSettings_RequiresSession(t *testing.T) {
	r := setupSettingsRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
