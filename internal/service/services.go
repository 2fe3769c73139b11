// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives
// validated data from the handler, sequences repository calls, and
// reports outcomes as typed errors the transport maps onto responses.
package service

import (
	"github.com/fstr-project/pereval-api/internal/repository"
	"github.com/fstr-project/pereval-api/internal/server"
)

// Services is the container for all service instances.
type Services struct {
	Perevals *PerevalService
}

// NewServices constructs the service container on top of the wired
// repositories.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Perevals: NewPerevalService(s, repos.Users, repos.Perevals),
	}, nil
}
