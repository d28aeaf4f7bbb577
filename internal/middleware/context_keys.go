package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// contextKey is a private type for values this package stores in a context.
// Using a custom type prevents collisions.
type contextKey string

const (
	// principalKey holds the authenticated caller's subject.
	principalKey = contextKey("principal")
	loggerCtxKey = contextKey("logger")
)

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// GetLoggerFromCtx retrieves the request-scoped logger from a standard context.
// It returns nil when none was stored so callers can pick their own fallback.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerCtxKey).(*slog.Logger)
	return logger
}

// LoggerOrDefault is GetLoggerFromCtx with slog.Default as fallback.
func LoggerOrDefault(ctx context.Context) *slog.Logger {
	if logger := GetLoggerFromCtx(ctx); logger != nil {
		return logger
	}
	return slog.Default()
}

// GetPrincipalFromContext retrieves the authenticated caller from the Gin context.
// It returns the subject and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (string, bool) {
	principal, ok := c.Request.Context().Value(principalKey).(string)
	if !ok || principal == "" {
		return "", false
	}
	return principal, true
}
