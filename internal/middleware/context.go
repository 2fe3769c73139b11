package middleware

import (
	"context"

	"github.com/fstr-project/pereval-api/internal/logger"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// LoggerKey is the context key for the request-scoped logger.
const LoggerKey = "logger"

// ContextEnhancer enriches each request with a request-scoped logger
// carrying correlation fields (request_id, method, route path, ip and
// trace metadata when a New Relic transaction exists). The logger is
// stored both in echo context and in the request's Go context so the
// lower layers can retrieve it.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer creates a ContextEnhancer using the app
// container.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns the echo middleware. It must run after
// RequestID and after the New Relic middleware for the correlation
// fields to be populated.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := GetRequestID(c)

			contextLogger := ce.server.Logger.With().
				Str("request_id", requestID).
				Str("method", c.Request().Method).
				Str("path", c.Path()). // route template, not raw URL
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			c.Set(LoggerKey, &contextLogger)

			ctx := context.WithValue(c.Request().Context(), LoggerKey, &contextLogger) //nolint:staticcheck // string key kept for echo parity
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetLogger retrieves the request-scoped logger from echo context. If
// EnhanceContext did not run it returns a no-op logger so callers
// never receive nil.
func GetLogger(c echo.Context) *zerolog.Logger {
	if log, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return log
	}

	log := zerolog.Nop()
	return &log
}
