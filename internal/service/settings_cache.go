package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/errs"
	"github.com/Sheeddhartho/Secura/internal/model"
)

// SettingsStore is the persistence behind the cache. Load must create
// and persist a default record when the tenant has none yet.
type SettingsStore interface {
	Load(ctx context.Context, tenantID string) (*model.TenantSettings, error)
	Save(ctx context.Context, tenantID string, alertThreshold int) (*model.TenantSettings, error)
}

// SettingsCache is the write-through, per-tenant settings cache. One
// entry accumulates per tenant ever seen — no TTL, no eviction; the
// tenant population is assumed small and bounded.
type SettingsCache struct {
	store SettingsStore
	log   *zap.Logger

	mu      sync.RWMutex
	entries map[string]model.Settings
	loading map[string]bool
}

// NewSettingsCache creates an empty cache over the store.
func NewSettingsCache(store SettingsStore, log *zap.Logger) *SettingsCache {
	return &SettingsCache{
		store:   store,
		log:     log,
		entries: make(map[string]model.Settings),
		loading: make(map[string]bool),
	}
}

// Get returns the tenant's settings, loading (and default-creating)
// from the store on a cache miss.
func (c *SettingsCache) Get(ctx context.Context, tenantID string) (model.Settings, error) {
	c.mu.RLock()
	s, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}
	return c.load(ctx, tenantID)
}

// Set validates and persists a new threshold, then atomically replaces
// the cache entry. On rejection or store failure neither cache nor
// store changes.
func (c *SettingsCache) Set(ctx context.Context, tenantID string, alertThreshold int) error {
	if alertThreshold < 1 {
		return errs.ErrInvalidThreshold
	}
	rec, err := c.store.Save(ctx, tenantID, alertThreshold)
	if err != nil {
		c.log.Error("settings save failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return err
	}
	c.mu.Lock()
	c.entries[tenantID] = model.Settings{TenantID: rec.TenantID, AlertThreshold: rec.AlertThreshold}
	c.mu.Unlock()
	return nil
}

// Threshold is the non-blocking read used on the evaluate hot path. A
// miss returns the default and triggers a background load; evaluates
// issued inside that window run against the default — an accepted
// eventual-consistency window, not a linearizability guarantee.
func (c *SettingsCache) Threshold(tenantID string) int {
	c.mu.RLock()
	s, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if ok {
		return s.AlertThreshold
	}
	c.Warm(tenantID)
	return model.DefaultAlertThreshold
}

// Warm triggers an asynchronous load for the tenant unless the entry is
// already cached or a load is in flight. The gateway calls this on
// every connect.
func (c *SettingsCache) Warm(tenantID string) {
	c.mu.Lock()
	if c.loading[tenantID] {
		c.mu.Unlock()
		return
	}
	if _, ok := c.entries[tenantID]; ok {
		c.mu.Unlock()
		return
	}
	c.loading[tenantID] = true
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = c.load(ctx, tenantID) // load logs its own failure
		c.mu.Lock()
		delete(c.loading, tenantID)
		c.mu.Unlock()
	}()
}

func (c *SettingsCache) load(ctx context.Context, tenantID string) (model.Settings, error) {
	rec, err := c.store.Load(ctx, tenantID)
	if err != nil {
		c.log.Error("settings load failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return model.Settings{}, err
	}
	s := model.Settings{TenantID: rec.TenantID, AlertThreshold: rec.AlertThreshold}
	c.mu.Lock()
	c.entries[tenantID] = s
	c.mu.Unlock()
	return s, nil
}
