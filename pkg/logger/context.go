package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// contextKey is an unexported key type so other packages cannot collide with
// our context values
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger stores a logger in the context for downstream code
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the request-scoped logger. It checks the echo context
// first, then the request's Go context, and falls back to the global logger
// so callers always get a usable instance.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}

	if l, ok := c.Request().Context().Value(loggerKey).(*zap.Logger); ok {
		return l
	}

	return zap.L()
}
