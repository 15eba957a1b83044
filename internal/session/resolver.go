// Package session resolves real-time connection credentials against the
// shared Redis session store. Sessions are issued by the surrounding auth
// layer; this service only ever reads them.
package session

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/errs"
)

// Resolver maps a session token to the owning tenant id.
type Resolver struct {
	rdb    *redis.Client
	prefix string
	log    *zap.Logger
}

// NewResolver creates a resolver reading keys <prefix><token> → tenant id.
func NewResolver(rdb *redis.Client, prefix string, log *zap.Logger) *Resolver {
	return &Resolver{rdb: rdb, prefix: prefix, log: log}
}

// Resolve returns the tenant id for the token. A missing, expired or empty
// session yields errs.ErrAuthRejected — callers must fail closed.
func (r *Resolver) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errs.ErrAuthRejected
	}
	tenantID, err := r.rdb.Get(ctx, r.prefix+token).Result()
	if err == redis.Nil {
		return "", errs.ErrAuthRejected
	}
	if err != nil {
		r.log.Error("session store lookup failed", zap.Error(err))
		return "", fmt.Errorf("session store: %w", err)
	}
	if tenantID == "" {
		return "", errs.ErrAuthRejected
	}
	return tenantID, nil
}
