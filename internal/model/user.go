package model

import (
	"encoding/json"
)

// Role is a closed set. Anything that is not exactly "Admin" is RoleNone.
type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "Admin"
)

func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleNone
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*r = RoleNone
		return nil
	}
	*r = ParseRole(s)
	return nil
}

type User struct {
	ID         string `json:"_id" db:"id" bson:"_id"`
	Email      string `json:"email" db:"email" bson:"email"`
	Name       string `json:"name,omitempty" db:"name" bson:"name,omitempty"`
	Phone      string `json:"phone,omitempty" db:"phone" bson:"phone,omitempty"`
	PhotoURL   string `json:"photoURL,omitempty" db:"photo_url" bson:"photoURL,omitempty"`
	Role       Role   `json:"role,omitempty" db:"role" bson:"role,omitempty"`
	Timestamps `bson:",inline"`
}

// UserProfile is the caller-supplied part of a user record. Role is never
// part of it: the only way to gain Admin is through an admin promotion.
type UserProfile struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	PhotoURL string `json:"photoURL"`
}

// UpsertResult reports which branch an upsert took.
type UpsertResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
}

func (r UpsertResult) Inserted() bool {
	return r.UpsertedCount > 0
}
