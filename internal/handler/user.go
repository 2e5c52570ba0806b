package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/userapi/internal/errs"
	"github.com/deppfellow/userapi/internal/model"
	"github.com/deppfellow/userapi/internal/server"
	"github.com/deppfellow/userapi/internal/service"
	"github.com/deppfellow/userapi/internal/storeerr"
)

// UserHandler serves the /api/user routes.
//
// Every reply is a model.Envelope. Storage failures are returned as
// *errs.EnvelopeError so the global error handler writes them as a 503
// envelope carrying the raw error payload.
type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

// ListUsers returns every user. An empty collection yields an empty array.
func (h *UserHandler) ListUsers(c echo.Context, _ *model.ListUsersRequest) (model.Envelope, error) {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return model.Envelope{}, errs.NewStorageError(model.MessageGetFailed, storeerr.Describe(err), err)
	}

	return model.NewEnvelope(http.StatusOK, model.MessageUsersFetched, users), nil
}

// CreateUser stores a new user. The reply acknowledges without data.
func (h *UserHandler) CreateUser(c echo.Context, req *model.CreateUserRequest) (model.Envelope, error) {
	if _, err := h.users.Create(c.Request().Context(), req.ToUser()); err != nil {
		return model.Envelope{}, errs.NewStorageError(storeerr.Describe(err).Message, nil, err)
	}

	return model.Ack(http.StatusCreated, model.MessageUserSaved), nil
}

// GetUser returns the matching user in a one element array. No match is
// still a 200, with "User Not Found" and an empty array.
func (h *UserHandler) GetUser(c echo.Context, req *model.GetUserRequest) (model.Envelope, error) {
	users, err := h.users.Get(c.Request().Context(), req.ID)
	if err != nil {
		return model.Envelope{}, errs.NewStorageError(model.MessageGetFailed, storeerr.Describe(err), err)
	}

	if len(users) == 0 {
		return model.NewEnvelope(http.StatusOK, model.MessageUserNotFound, []model.User{}), nil
	}
	return model.NewEnvelope(http.StatusOK, model.MessageUsersFetched, users), nil
}

// UpdateUser merges the supplied fields. data is the updated user, or null
// when no user matched.
func (h *UserHandler) UpdateUser(c echo.Context, req *model.UpdateUserRequest) (model.Envelope, error) {
	user, err := h.users.Update(c.Request().Context(), req.ID, req.Patch())
	if err != nil {
		return model.Envelope{}, errs.NewStorageError(model.MessageGetFailed, storeerr.Describe(err), err)
	}

	return model.NewEnvelope(http.StatusOK, model.MessageUserUpdated, user), nil
}

// DeleteUser removes the user. Deleting a missing user succeeds.
func (h *UserHandler) DeleteUser(c echo.Context, req *model.DeleteUserRequest) (model.Envelope, error) {
	if err := h.users.Delete(c.Request().Context(), req.ID); err != nil {
		return model.Envelope{}, errs.NewStorageError(model.MessageRemoveFailed, storeerr.Describe(err), err)
	}

	return model.Ack(http.StatusOK, model.MessageUserDeleted), nil
}
