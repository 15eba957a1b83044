package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionResolver maps a session token to a tenant id (D: handlers
// depend on the abstraction, not the Redis client).
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

const ctxTenantID = "tenant_id"

// SessionCookie is the cookie the auth layer sets on login.
const SessionCookie = "secura_session"

// RequireSession resolves the request's session token and aborts with
// 401 when it cannot be resolved. Fail-closed: no tenant, no handler.
func RequireSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := sessions.Resolve(c.Request.Context(), sessionToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(ctxTenantID, tenantID)
		c.Next()
	}
}

// TenantID returns the tenant id set by RequireSession.
func TenantID(c *gin.Context) string {
	return c.GetString(ctxTenantID)
}

// sessionToken extracts the session credential: cookie, then bearer
// header, then query param (the latter is what browser WebSocket
// clients without header control use).
func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("session")
}
