package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Role is the fixed set of account roles the API hands out.  The role is
// returned with the profile and is also embedded in the access token's
// "role" claim.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ID is an opaque record identifier.  The API is not consistent about
// identifier types (some endpoints return numbers, others strings), so ID
// accepts both on decode and always encodes as a string.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a string.
func (id ID) String() string { return string(id) }

// IDFromInt formats a numeric identifier.
func IDFromInt(n int64) ID { return ID(strconv.FormatInt(n, 10)) }

// User is the authenticated profile returned by GET /api/users/me.  It is
// held in memory by the session only and discarded on logout.
//
// Fields:
//  ID              – server identifier of the user.
//  Email           – login email address.
//  FirstName       – given name.
//  LastName        – family name.
//  Role            – one of student, teacher or admin.
//  ThemePreference – optional UI theme name.
//  ProfileImage    – optional avatar URL.
type User struct {
	ID              ID     `json:"id" validate:"required"`
	Email           string `json:"email" validate:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            Role   `json:"role" validate:"required"`
	ThemePreference string `json:"theme_preference,omitempty"`
	ProfileImage    string `json:"profile_image,omitempty"`
}

// FullName joins first and last name the way the dashboard header shows it.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UpdateProfile is the PUT /api/users/me body.  Nil fields are left
// untouched by the server.
type UpdateProfile struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	ThemePreference *string `json:"theme_preference,omitempty"`
	ProfileImage    *string `json:"profile_image,omitempty"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// FindUser returns the user with the given id, if present.
func FindUser(users []User, id ID) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
