package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/model"
)

// Notifier dispatches one alert notification. Best-effort: the engine
// never retries and never propagates the error.
type Notifier interface {
	SendAlert(ctx context.Context, tenantID, subjectName string, at time.Time) error
}

// ThresholdSource yields the current alert threshold for a tenant
// without blocking. The settings cache implements it.
type ThresholdSource interface {
	Threshold(tenantID string) int
}

// subjectCounter serializes all mutations for one (tenant, subject)
// pair. Holding its lock across the increment-compare-reset sequence is
// what rules out lost updates between concurrent evaluates.
type subjectCounter struct {
	mu    sync.Mutex
	count int
}

// Engine throttles alert notifications per tenant and subject. Counters
// are purely in-memory: a restart starts every subject back at zero.
type Engine struct {
	thresholds ThresholdSource
	notifier   Notifier // nil disables dispatch, counters still run
	log        *zap.Logger

	mu      sync.Mutex
	tenants map[string]map[string]*subjectCounter
}

// NewEngine creates a cooldown engine.
func NewEngine(thresholds ThresholdSource, notifier Notifier, log *zap.Logger) *Engine {
	return &Engine{
		thresholds: thresholds,
		notifier:   notifier,
		log:        log,
		tenants:    make(map[string]map[string]*subjectCounter),
	}
}

// Evaluate feeds one classified detection into the counter for
// (tenantID, subjectName) and reports whether a notification fired.
//
// "allow" never touches the counter. An "alert" increments it; reaching
// the tenant's threshold resets the counter to zero unconditionally —
// before and regardless of the dispatch outcome — and fires the
// notification on a background context so a dropped connection cancels
// nothing.
func (e *Engine) Evaluate(ctx context.Context, tenantID, subjectName string, action model.Action) bool {
	if action != model.ActionAlert {
		return false
	}

	threshold := e.thresholds.Threshold(tenantID)
	c := e.counter(tenantID, subjectName)

	c.mu.Lock()
	c.count++
	fired := c.count >= threshold
	if fired {
		c.count = 0
	}
	c.mu.Unlock()

	if !fired {
		return false
	}

	e.log.Info("alert threshold reached",
		zap.String("tenant_id", tenantID),
		zap.String("subject", subjectName),
		zap.Int("threshold", threshold))

	if e.notifier != nil {
		at := time.Now()
		go func() {
			if err := e.notifier.SendAlert(context.Background(), tenantID, subjectName, at); err != nil {
				e.log.Error("alert notification failed",
					zap.String("tenant_id", tenantID),
					zap.String("subject", subjectName),
					zap.Error(err))
			}
		}()
	}
	return true
}

// Count returns the current counter value (debugging and tests).
func (e *Engine) Count(tenantID, subjectName string) int {
	c := e.counter(tenantID, subjectName)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (e *Engine) counter(tenantID, subjectName string) *subjectCounter {
	e.mu.Lock()
	defer e.mu.Unlock()
	subjects := e.tenants[tenantID]
	if subjects == nil {
		subjects = make(map[string]*subjectCounter)
		e.tenants[tenantID] = subjects
	}
	c := subjects[subjectName]
	if c == nil {
		c = &subjectCounter{}
		subjects[subjectName] = c
	}
	return c
}
