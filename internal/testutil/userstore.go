// Package testutil provides test doubles shared by the handler, service and
// router tests.
package testutil

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deppfellow/userapi/internal/model"
	"github.com/deppfellow/userapi/internal/repository"
)

// UserStore is an in-memory user store with the same observable behavior as
// repository.UserRepository. Insertion order is preserved.
type UserStore struct {
	mu    sync.Mutex
	users []model.User
	err   error
	calls int
}

func NewUserStore(seed ...model.User) *UserStore {
	return &UserStore{users: append([]model.User(nil), seed...)}
}

// FailWith makes every following call return err. Pass nil to recover.
func (s *UserStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many store operations were attempted.
func (s *UserStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) Find(_ context.Context, filter repository.UserFilter) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	out := []model.User{}
	if filter.ID == "" {
		return append(out, s.users...), nil
	}
	if i := s.index(filter.ID); i >= 0 {
		out = append(out, s.users[i])
	}
	return out, nil
}

func (s *UserStore) Insert(_ context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	doc := *user
	doc.ID = primitive.NewObjectID()
	s.users = append(s.users, doc)
	return &doc, nil
}

func (s *UserStore) UpdateByID(_ context.Context, id string, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	i := s.index(id)
	if i < 0 {
		return nil, nil
	}
	patch.Apply(&s.users[i])
	doc := s.users[i]
	return &doc, nil
}

func (s *UserStore) DeleteByID(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return false, s.err
	}

	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return true, nil
}

// index returns the position of the user with the given hex id, or -1.
// Malformed ids never match.
func (s *UserStore) index(id string) int {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return -1
	}
	for i := range s.users {
		if s.users[i].ID == oid {
			return i
		}
	}
	return -1
}
