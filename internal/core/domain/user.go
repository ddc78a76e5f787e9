package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the authorization level attached to a user record.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
	RoleGuest Role = "Guest"
)

// ParseRole maps a free-form role string to its canonical Role value.
// Matching is case-insensitive. The second return reports whether the
// input named a known role; callers decide what an unknown role means
// (Register defaults to Guest, Update keeps the current role).
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "user":
		return RoleUser, true
	case "guest":
		return RoleGuest, true
	default:
		return RoleGuest, false
	}
}

// User is the durable identity record. ID, CreatedAt are immutable after
// creation; every other field mutates only through UserService.Update.
type User struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	Role           Role       `json:"role"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	// JWTToken is a convenience copy of the most recently issued token.
	// The signed token itself remains the source of truth for validation.
	JWTToken string `json:"jwt_token,omitempty"`
}

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports malformed or missing input. The boundary maps it
// to a 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}
