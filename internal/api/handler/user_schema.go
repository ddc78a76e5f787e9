package handler

import (
	"time"

	"github.com/99minutos/users-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name"  validate:"required"`
	Email     string    `json:"email"      validate:"required,email"`
	Password  string    `json:"password"   validate:"required,min=6"`
	Role      string    `json:"role"       validate:"required"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// editUserRequest is a partial update: absent fields leave the record
// untouched. Pointer fields distinguish "absent" from "set to zero".
type editUserRequest struct {
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Password  string     `json:"password,omitempty"`
	Role      string     `json:"role,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	JWTToken  string     `json:"jwt_token,omitempty"`
}

// loginResponse is returned on a successful login. The user snapshot
// already carries the stamped last_login and cached token.
type loginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}
