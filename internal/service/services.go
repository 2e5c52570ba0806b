// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/userapi/internal/lib/job"
	"github.com/deppfellow/userapi/internal/repository"
	"github.com/deppfellow/userapi/internal/server"
)

type Services struct {
	User *UserService
	Job  *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	// A nil *JobService must not end up inside a non-nil interface.
	var publisher EventPublisher
	if s.Job != nil {
		publisher = s.Job
	}

	return &Services{
		User: NewUserService(repos.User, publisher, s.Logger),
		Job:  s.Job,
	}
}
