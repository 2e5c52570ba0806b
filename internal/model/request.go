package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all request types. Field errors are reported under
// their JSON (or path parameter) names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "param"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// ListUsersRequest has no inputs.
type ListUsersRequest struct{}

func (r *ListUsersRequest) Validate() error {
	return nil
}

// CreateUserRequest is the POST /api/user payload.
// Age is a pointer so that 0 passes the required check.
type CreateUserRequest struct {
	Name string   `json:"name" validate:"required"`
	Age  *float64 `json:"age" validate:"required"`
}

func (r *CreateUserRequest) Validate() error {
	return validate.Struct(r)
}

// ToUser builds the record to insert. The ID is left for storage to assign.
func (r *CreateUserRequest) ToUser() *User {
	return &User{Name: r.Name, Age: *r.Age}
}

// GetUserRequest is GET /api/user/:id.
type GetUserRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
}

func (r *GetUserRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateUserRequest is PUT /api/user/:id. Absent fields stay unchanged;
// explicit nulls are rejected.
type UpdateUserRequest struct {
	ID   string   `param:"id" json:"-" validate:"required"`
	Name *string  `json:"name" validate:"omitnil,min=1"`
	Age  *float64 `json:"age"`
}

func (r *UpdateUserRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, name := range []string{"name", "age"} {
		if raw, ok := fields[name]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return fmt.Errorf("json: field %q must not be null", name)
		}
	}

	// The alias drops this method, so the fields decode normally.
	type body UpdateUserRequest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode((*body)(r))
}

func (r *UpdateUserRequest) Validate() error {
	return validate.Struct(r)
}

// Patch returns the fields to merge into the stored user.
func (r *UpdateUserRequest) Patch() UserPatch {
	return UserPatch{Name: r.Name, Age: r.Age}
}

// DeleteUserRequest is DELETE /api/user/:id.
type DeleteUserRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
}

func (r *DeleteUserRequest) Validate() error {
	return validate.Struct(r)
}
