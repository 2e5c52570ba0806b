package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deppfellow/userapi/internal/lib/job"
	"github.com/deppfellow/userapi/internal/model"
	"github.com/deppfellow/userapi/internal/repository"
)

// UserStore is the persistence contract UserService depends on.
// repository.UserRepository is the production implementation.
type UserStore interface {
	Find(ctx context.Context, filter repository.UserFilter) ([]model.User, error)
	Insert(ctx context.Context, user *model.User) (*model.User, error)
	UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// EventPublisher receives an audit record after every successful write.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, action, userID string) error
}

type UserService struct {
	store     UserStore
	publisher EventPublisher
	logger    *zerolog.Logger
}

// NewUserService creates a UserService. publisher may be nil, in which case
// no audit events are emitted.
func NewUserService(store UserStore, publisher EventPublisher, logger *zerolog.Logger) *UserService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &UserService{store: store, publisher: publisher, logger: logger}
}

// List returns every stored user.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.Find(ctx, repository.UserFilter{})
}

// Get returns the users whose id matches: zero or one element.
func (s *UserService) Get(ctx context.Context, id string) ([]model.User, error) {
	return s.store.Find(ctx, repository.UserFilter{ID: id})
}

func (s *UserService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created, err := s.store.Insert(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, job.ActionCreated, created.ID.Hex())
	return created, nil
}

// Update merges patch into the user and returns the result, or nil when no
// user has that id.
func (s *UserService) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	updated, err := s.store.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if updated != nil {
		s.publish(ctx, job.ActionUpdated, updated.ID.Hex())
	}
	return updated, nil
}

// Delete removes the user. A missing user is not an error, and only an
// actual removal emits an event.
func (s *UserService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}

	if deleted {
		s.publish(ctx, job.ActionDeleted, id)
	}
	return nil
}

// publish is best effort: the write already succeeded, so a queue failure
// is logged and dropped.
func (s *UserService) publish(ctx context.Context, action, userID string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishUserEvent(ctx, action, userID); err != nil {
		s.logger.Warn().
			Err(err).
			Str("action", action).
			Str("user_id", userID).
			Msg("failed to publish user event")
	}
}
