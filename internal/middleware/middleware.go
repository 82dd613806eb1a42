package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/logger"
	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader = "X-Request-ID"
	SessionCookie   = "session"
	sessionKey      = "session"
)

// RequestID puts a request id on the request context and the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = logger.NewRequestID()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Logger logs every request once it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if s, ok := SessionFrom(c); ok {
			fields = append(fields, "session_kind", s.Kind)
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			if len(c.Errors) > 0 {
				fields = append(fields, "error", c.Errors.String())
			}
			log.Error("request failed", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// Recovery logs a panic and answers 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithContext(c.Request.Context()).Error("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
		)
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	})
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
}

// Session resolves the bearer token or session cookie when present. Requests
// without one pass through anonymously.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		session, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "session not resolved", "error", err)
			c.Next()
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// Require rejects requests without a session of the given kind.
func Require(kind domain.SessionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		if s.Kind != kind {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not allowed"})
			return
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*domain.Session)
	return s, ok
}

// SetSession attaches s to the gin context.
func SetSession(c *gin.Context, s *domain.Session) {
	c.Set(sessionKey, s)
}

func SessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	token, _ := c.Cookie(SessionCookie)
	return token
}
