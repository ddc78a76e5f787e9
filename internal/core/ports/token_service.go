package ports

import (
	"context"
	"time"

	"github.com/99minutos/users-service/internal/core/domain"
)

// IssuedToken is the result of signing a credential for an existing user.
type IssuedToken struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer builds and signs a bounded-lifetime JWT for an existing
// user. Issuing for an unknown id returns domain.ErrUserNotFound; that is
// an expected outcome, not a failure.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string) (*IssuedToken, error)
}

// TokenCache holds a best-effort copy of the most recently issued token
// per user. Cache failures must never fail a login.
type TokenCache interface {
	Store(ctx context.Context, userID, token string, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}
