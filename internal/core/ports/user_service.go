package ports

import (
	"context"
	"time"

	"github.com/99minutos/users-service/internal/core/domain"
)

// RegisterInput carries a new account request. All fields are required;
// Role is free-form and mapped case-insensitively, unknown values default
// to Guest.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	BirthDate time.Time
}

// UpdateInput is a partial update: zero-valued fields are left untouched.
// Pointer fields distinguish "absent" from "set to zero".
type UpdateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	BirthDate *time.Time
	LastLogin *time.Time
	UpdatedAt *time.Time
	JWTToken  string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Authenticate returns domain.ErrInvalidCredentials for an unknown
	// email and for a wrong password alike; the two causes must stay
	// indistinguishable to the caller.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}
