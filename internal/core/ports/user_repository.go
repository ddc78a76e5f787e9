package ports

import (
	"context"

	"github.com/99minutos/users-service/internal/core/domain"
)

// UserRepository defines the interface for durable user persistence.
//
// Email uniqueness: the storage layer must enforce a unique constraint on
// the email field and surface a violation as domain.ErrEmailTaken from
// Create and Replace. The service's pre-insert email lookup is only a
// fast path for a friendly error; the constraint is the correctness
// mechanism under concurrent registration.
//
// Email matching is exact (case-sensitive) as stored.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Replace performs a full-record replace keyed by id.
	Replace(ctx context.Context, id string, user *domain.User) error
	// Delete reports whether a record existed and was removed. A missing
	// id is not an error.
	Delete(ctx context.Context, id string) (bool, error)
}
