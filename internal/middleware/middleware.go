package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Ctx key and helpers for the anonymous session id
// Using unexported type to avoid collisions

type ctxKey string

const sessionIDKey ctxKey = "session_id"

// SessionCookie is the cookie carrying the anonymous basket session id.
const SessionCookie = "ticket_session"

func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(sessionIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Session assigns every request an anonymous session id, minting a fresh
// UUID cookie when none is present. The basket is keyed by this id.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie(SessionCookie, sessionID, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
		}

		c.Set(string(sessionIDKey), sessionID)
		c.Request = c.Request.WithContext(ContextWithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// SessionID returns the session id assigned by the Session middleware.
func SessionID(c *gin.Context) string {
	if v, exists := c.Get(string(sessionIDKey)); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// CORS handles cross-origin requests
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Cookie")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger emits one structured line per failed request
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		if c.Writer.Status() >= 400 {
			logFields := []any{
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status_code", c.Writer.Status(),
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
				"session_id", SessionID(c),
			}
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			slog.Error("Request completed with error", logFields...)
		}
	}
}

// Recovery turns panics into a logged 500 response
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}
