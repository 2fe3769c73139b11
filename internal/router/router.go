// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes, mapping
// specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/fstr-project/pereval-api/internal/handler"
	"github.com/fstr-project/pereval-api/internal/middleware"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance: middleware first (order
// matters), then the routes.
//
// Middleware order:
//  1. request id, so every later stage can correlate log lines
//  2. New Relic transaction start + tracing enrichment
//  3. context enhancer, which derives the request-scoped logger
//  4. global middleware (CORS, request logging, recovery, headers)
func NewRouter(middlewares *middleware.Middlewares, handlers *handler.Handlers) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middlewares.Tracing.NewRelicMiddleware())
	e.Use(middlewares.Tracing.EnhanceTracing())
	e.Use(middlewares.ContextEnhancer.EnhanceContext())
	e.Use(middlewares.Global.CORS())
	e.Use(middlewares.Global.RequestLogger())
	e.Use(middlewares.Global.Recover())
	e.Use(middlewares.Global.Secure())

	registerSystemRoutes(e, handlers)
	registerPerevalRoutes(e, handlers)

	return e
}

// registerPerevalRoutes wires the legacy submitData API.
//
// The trailing-slash listing route and the :id route coexist: echo
// resolves the exact "/submitData/" path before the parameter route.
func registerPerevalRoutes(e *echo.Echo, handlers *handler.Handlers) {
	h := handlers.Pereval

	e.POST("/submitData", handler.Handle(h.Handler, h.SubmitData, http.StatusOK))
	e.GET("/submitData/", handler.Handle(h.Handler, h.ListByUserEmail, http.StatusOK))
	e.GET("/submitData/:id", handler.Handle(h.Handler, h.GetPereval, http.StatusOK))
	e.PATCH("/submitData/:id", handler.Handle(h.Handler, h.UpdatePereval, http.StatusOK))
}
