// Package model holds the user entity, the typed per-route request
// structures, and the response envelope shared by every handler.
package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a persisted user document.
//
// ID is assigned by the storage layer on insert and never changes afterwards.
type User struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
	Age  float64            `json:"age" bson:"age"`
}

// UserPatch lists the fields an update merges into an existing user.
// Nil fields are left unchanged.
type UserPatch struct {
	Name *string
	Age  *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil
}

// Apply merges the supplied fields into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
}
