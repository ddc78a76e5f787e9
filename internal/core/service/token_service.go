package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/users-service/internal/core/domain"
	"github.com/99minutos/users-service/internal/core/ports"
)

// Claims is the exact claim set consumers of issued tokens validate
// against: sub (user id), email, role (canonical role name), plus the
// registered iss/aud/iat/exp fields. Tokens are signed HS256 with the
// shared secret; verifiers should allow no clock skew.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues signed JWTs for existing users.
type TokenService struct {
	repo     ports.UserRepository
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
}

func NewTokenService(repo ports.UserRepository, secret, issuer, audience string, expiry time.Duration) *TokenService {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &TokenService{
		repo:     repo,
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		expiry:   expiry,
	}
}

// Issue looks up the user and returns a signed token with its expiry.
// An unknown id yields domain.ErrUserNotFound; that is the expected
// absent outcome, not a fault.
func (s *TokenService) Issue(ctx context.Context, userID string) (*ports.IssuedToken, error) {
	if userID == "" {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.expiry)

	claims := Claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &ports.IssuedToken{User: user, Token: signed, ExpiresAt: expiresAt}, nil
}
