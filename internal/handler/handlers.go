package handler

import (
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/fstr-project/pereval-api/internal/service"
)

// Handlers is a container that groups all HTTP handlers, so the
// router receives one object instead of many.
type Handlers struct {
	Pereval *PerevalHandler // Pereval serves the submitData endpoints.
	Health  *HealthHandler  // Health serves the service health endpoint.
	OpenAPI *OpenAPIHandler // OpenAPI serves the API documentation UI.
}

// NewHandlers constructs the handler container on top of the wired
// services.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Pereval: NewPerevalHandler(s, services.Perevals),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
