// Package middleware holds the HTTP middleware stack: global concerns
// (CORS, request logging, recovery, secure headers, the error
// funnel), request-id propagation, request-scoped logger enrichment,
// and New Relic tracing.
package middleware

import (
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups all middleware components used by the HTTP
// server so routing setup receives a single wired object.
type Middlewares struct {
	// Global holds middleware applied to every route plus the global
	// error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer enriches each request with a request-scoped
	// logger (request_id, method, path, ip, trace metadata).
	ContextEnhancer *ContextEnhancer

	// Tracing provides the New Relic middleware and helpers; it
	// degrades to a no-op when the agent is disabled.
	Tracing *TracingMiddleware
}

// NewMiddlewares constructs all middleware components from the
// application container.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
	}
}
