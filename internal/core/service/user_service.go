package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/users-service/internal/core/domain"
	"github.com/99minutos/users-service/internal/core/ports"
)

const minPasswordLength = 6

// UserService orchestrates registration, authentication, partial update
// and deletion against the repository and password hasher. It holds no
// mutable state; conflicting operations are serialized by the store.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, logger: logger}
}

// Register creates a new user record. An unknown role string defaults to
// Guest. The email lookup before the insert gives a friendly conflict
// error on the fast path; the repository's unique email index is what
// actually prevents duplicates under concurrent registration.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Email == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "is required"}
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	if len(in.Password) < minPasswordLength {
		return nil, &domain.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	role, _ := domain.ParseRole(in.Role)

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	birthDate := in.BirthDate
	user := &domain.User{
		ID:             primitive.NewObjectID().Hex(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		HashedPassword: digest,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      &now,
		BirthDate:      &birthDate,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both return ErrInvalidCredentials so callers cannot probe for
// account existence.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// Update merges the supplied fields into the current record. String
// fields apply only when non-empty and different; supplying the current
// password leaves the stored digest untouched; an unknown role string
// keeps the current role (unlike Register's Guest default); a supplied
// LastLogin always counts as a change. When nothing changes the current
// record is returned with zero writes.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateInput) (*domain.User, error) {
	if id == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "is required"}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	newRole, knownRole := domain.ParseRole(in.Role)
	roleChanged := in.Role != "" && knownRole && newRole != user.Role
	passwordChanged := in.Password != "" && !s.hasher.Verify(in.Password, user.HashedPassword)
	birthDateChanged := in.BirthDate != nil && (user.BirthDate == nil || !in.BirthDate.Equal(*user.BirthDate))

	changed := (in.FirstName != "" && in.FirstName != user.FirstName) ||
		(in.LastName != "" && in.LastName != user.LastName) ||
		(in.Email != "" && in.Email != user.Email) ||
		passwordChanged ||
		birthDateChanged ||
		roleChanged ||
		in.LastLogin != nil

	if !changed {
		return user, nil
	}

	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if passwordChanged {
		digest, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.HashedPassword = digest
	}
	if in.BirthDate != nil {
		user.BirthDate = in.BirthDate
	}
	if roleChanged {
		user.Role = newRole
	}
	if in.LastLogin != nil {
		user.LastLogin = in.LastLogin
	}
	if in.JWTToken != "" {
		user.JWTToken = in.JWTToken
	}
	if in.UpdatedAt != nil {
		user.UpdatedAt = in.UpdatedAt
	} else {
		now := time.Now().UTC()
		user.UpdatedAt = &now
	}

	if err := s.repo.Replace(ctx, id, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("replace user: %w", err)
	}

	s.logger.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

// Delete removes a user record. Deleting a nonexistent id returns false,
// not an error.
func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, &domain.ValidationError{Field: "id", Reason: "is required"}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if deleted {
		s.logger.Info().Str("user_id", id).Msg("user deleted")
	}
	return deleted, nil
}
