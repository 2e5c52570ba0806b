package router

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/userapi/internal/handler"
	"github.com/deppfellow/userapi/internal/model"
	"github.com/deppfellow/userapi/internal/openapi"
)

const userTag = "user"

// userOperations is the user route table. Paths use Echo syntax.
func userOperations() []openapi.Operation {
	return []openapi.Operation{
		{
			Method:         http.MethodGet,
			Path:           "/api/user",
			ID:             "listUsers",
			Summary:        "List users",
			Tags:           []string{userTag},
			SuccessStatus:  http.StatusOK,
			SuccessMessage: model.MessageUsersFetched,
			Data:           openapi.Many,
			Model:          model.User{},
			FailureMessage: model.MessageGetFailed,
		},
		{
			Method:         http.MethodPost,
			Path:           "/api/user",
			ID:             "createUser",
			Summary:        "Create a user",
			Tags:           []string{userTag},
			Request:        &model.CreateUserRequest{},
			SuccessStatus:  http.StatusCreated,
			SuccessMessage: model.MessageUserSaved,
			FailureMessage: "Storage failure; the message is the storage error text",
		},
		{
			Method:         http.MethodGet,
			Path:           "/api/user/:id",
			ID:             "getUser",
			Summary:        "Get a user by id",
			Description:    `Returns a one element array, or an empty array with "User Not Found" when nothing matches.`,
			Tags:           []string{userTag},
			Request:        &model.GetUserRequest{},
			SuccessStatus:  http.StatusOK,
			SuccessMessage: model.MessageUsersFetched,
			Data:           openapi.Many,
			Model:          model.User{},
			FailureMessage: model.MessageGetFailed,
		},
		{
			Method:         http.MethodPut,
			Path:           "/api/user/:id",
			ID:             "updateUser",
			Summary:        "Update a user",
			Description:    "Merges the supplied fields. data is null when nothing matches.",
			Tags:           []string{userTag},
			Request:        &model.UpdateUserRequest{},
			SuccessStatus:  http.StatusOK,
			SuccessMessage: model.MessageUserUpdated,
			Data:           openapi.One,
			Model:          model.User{},
			FailureMessage: model.MessageGetFailed,
		},
		{
			Method:         http.MethodDelete,
			Path:           "/api/user/:id",
			ID:             "deleteUser",
			Summary:        "Delete a user",
			Description:    "Succeeds whether or not a user matched.",
			Tags:           []string{userTag},
			Request:        &model.DeleteUserRequest{},
			SuccessStatus:  http.StatusOK,
			SuccessMessage: model.MessageUserDeleted,
			FailureMessage: model.MessageRemoveFailed,
		},
	}
}

func userHandlers(h *handler.UserHandler) map[string]echo.HandlerFunc {
	return map[string]echo.HandlerFunc{
		"listUsers":  handler.Handle(h.Handler, h.ListUsers, http.StatusOK),
		"createUser": handler.Handle(h.Handler, h.CreateUser, http.StatusCreated),
		"getUser":    handler.Handle(h.Handler, h.GetUser, http.StatusOK),
		"updateUser": handler.Handle(h.Handler, h.UpdateUser, http.StatusOK),
		"deleteUser": handler.Handle(h.Handler, h.DeleteUser, http.StatusOK),
	}
}

func registerUserRoutes(r *echo.Echo, h *handler.Handlers) error {
	handlers := userHandlers(h.User)

	for _, op := range userOperations() {
		fn, ok := handlers[op.ID]
		if !ok {
			return fmt.Errorf("no handler for operation %s", op.ID)
		}
		r.Add(op.Method, op.Path, fn)
	}
	return nil
}
