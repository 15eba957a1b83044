package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/model"
)

// AlertLogStore persists detection events.
type AlertLogStore interface {
	Create(ctx context.Context, entry *model.AlertLog) error
	Recent(ctx context.Context, tenantID string, limit int) ([]model.AlertLog, error)
}

// AlertEvaluator is the cooldown engine as seen from the log endpoint.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, tenantID, subjectName string, action model.Action) bool
}

// LogHandler handles the detection log endpoints that drive the
// cooldown engine.
type LogHandler struct {
	logs   AlertLogStore
	engine AlertEvaluator
	limit  int
	logger *zap.Logger
}

// NewLogHandler creates a log handler. limit caps GET /api/logs.
func NewLogHandler(logs AlertLogStore, engine AlertEvaluator, limit int, logger *zap.Logger) *LogHandler {
	return &LogHandler{logs: logs, engine: engine, limit: limit, logger: logger}
}

// Submit godoc
// POST /api/logs — persist one detection event, then run the cooldown
// evaluation. A failed audit write short-circuits: the counter is never
// touched for an event that was not recorded.
func (h *LogHandler) Submit(c *gin.Context) {
	var req model.SubmitLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if !req.Action.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be allow or alert"})
		return
	}
	tenantID := TenantID(c)
	entry := &model.AlertLog{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		SubjectName: req.Name,
		Action:      req.Action,
		Timestamp:   time.Now(),
	}
	if err := h.logs.Create(c.Request.Context(), entry); err != nil {
		h.logger.Error("log write failed", zap.String("tenant_id", tenantID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save log"})
		return
	}

	fired := h.engine.Evaluate(c.Request.Context(), tenantID, req.Name, req.Action)

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"log":      toLogEntry(entry),
		"notified": fired,
	})
}

// List godoc
// GET /api/logs — latest entries for the tenant, newest first.
func (h *LogHandler) List(c *gin.Context) {
	entries, err := h.logs.Recent(c.Request.Context(), TenantID(c), h.limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch logs"})
		return
	}
	out := make([]model.LogEntry, 0, len(entries))
	for i := range entries {
		out = append(out, toLogEntry(&entries[i]))
	}
	c.JSON(http.StatusOK, out)
}

func toLogEntry(e *model.AlertLog) model.LogEntry {
	return model.LogEntry{
		ID:          e.ID,
		SubjectName: e.SubjectName,
		Action:      e.Action,
		Timestamp:   e.Timestamp,
	}
}
