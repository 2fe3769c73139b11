package router

import (
	"github.com/fstr-project/pereval-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes wires the non-business endpoints: health,
// docs UI, and the static files the docs UI loads.
func registerSystemRoutes(e *echo.Echo, handlers *handler.Handlers) {
	e.GET("/status", handlers.Health.CheckHealth)
	e.GET("/docs", handlers.OpenAPI.ServeOpenAPIUI)
	e.Static("/static", "static")
}
