// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist, or
// update data, abstracting SQL logic away from the service layer.
// Every method issues a single statement against the pool, so each
// call commits on its own; there is no batching across calls.
package repository

import (
	"github.com/fstr-project/pereval-api/internal/server"
)

// Repositories is the container for all repository instances, wired
// once at startup and handed to the service layer.
type Repositories struct {
	Users    *UserRepository
	Perevals *PerevalRepository
}

// NewRepositories constructs the repository container from the
// application container (the pool lives on s.DB, the logger on
// s.Logger).
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(s),
		Perevals: NewPerevalRepository(s),
	}
}
