package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionIDKey is the gin context key holding the shopper's session id
const SessionIDKey = "session_id"

// IdempotencyKeyHeader lets a client mark a checkout submission as a retry
const IdempotencyKeyHeader = "Idempotency-Key"

// SessionConfig configures the shopper session cookie
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session makes sure every storefront request carries a session id.
// A missing or malformed cookie is replaced by a fresh UUID. The cookie is
// rewritten on every request so its expiry slides with activity.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "sadsod_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sessionID, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id set by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
