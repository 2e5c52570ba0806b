// Package repository handles all interactions with the database.
//
// It contains the MongoDB queries used to fetch, persist, update and remove
// documents, keeping driver details away from the service layer.
package repository

import (
	"github.com/deppfellow/userapi/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	User *UserRepository
}

// NewRepositories builds every repository on top of the server's database handle.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		User: NewUserRepository(s.DB.Users()),
	}
}
