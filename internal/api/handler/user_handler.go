package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/users-service/internal/api/metrics"
	"github.com/99minutos/users-service/internal/core/domain"
	"github.com/99minutos/users-service/internal/core/ports"
)

type UserHandler struct {
	users  ports.UserService
	tokens ports.TokenIssuer
	cache  ports.TokenCache
	logger zerolog.Logger
}

func NewUserHandler(users ports.UserService, tokens ports.TokenIssuer, cache ports.TokenCache, logger zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, cache: cache, logger: logger}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.users.Register(c.Request().Context(), ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error()})
		case errors.Is(err, domain.ErrEmailTaken):
			return c.JSON(http.StatusConflict, errorResponse{Error: "email already registered"})
		}
		h.logger.Error().Err(err).Msg("register failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}

	metrics.RegistrationsTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a user and returns a signed JWT.
//
// On success the handler also stamps last_login and caches the issued
// token on the user record before responding, so the returned snapshot
// reflects both. Unknown email and wrong password produce the same 401.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()

	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		h.logger.Error().Err(err).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}

	issued, err := h.tokens.Issue(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The record vanished between authenticate and issue; keep
			// the uniform credentials response.
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		h.logger.Error().Err(err).Msg("token issuance failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}

	now := time.Now().UTC()
	user, err = h.users.Update(ctx, user.ID, ports.UpdateInput{
		LastLogin: &now,
		JWTToken:  issued.Token,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("stamping last login failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}

	if err := h.cache.Store(ctx, user.ID, issued.Token, time.Until(issued.ExpiresAt)); err != nil {
		h.logger.Warn().Err(err).Str("user_id", user.ID).Msg("token cache write failed")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()

	return c.JSON(http.StatusOK, loginResponse{
		User:      user,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	})
}

// Update applies a partial update to a user record.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "User id"
// @Param        body  body      editUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	id := c.Param("id")
	var req editUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	user, err := h.users.Update(c.Request().Context(), id, ports.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		BirthDate: req.BirthDate,
		LastLogin: req.LastLogin,
		UpdatedAt: req.UpdatedAt,
		JWTToken:  req.JWTToken,
	})
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error()})
		case errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		case errors.Is(err, domain.ErrEmailTaken):
			return c.JSON(http.StatusConflict, errorResponse{Error: "email already registered"})
		}
		h.logger.Error().Err(err).Str("user_id", id).Msg("update failed")
		return c.JSON(http.StatusConflict, errorResponse{Error: "user could not be updated"})
	}

	return c.JSON(http.StatusOK, user)
}

// Delete removes a user record.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	id := c.Param("id")

	deleted, err := h.users.Delete(c.Request().Context(), id)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error()})
		}
		h.logger.Error().Err(err).Str("user_id", id).Msg("delete failed")
		return c.JSON(http.StatusConflict, errorResponse{Error: "user could not be deleted"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
	}

	if err := h.cache.Invalidate(c.Request().Context(), id); err != nil {
		h.logger.Warn().Err(err).Str("user_id", id).Msg("token cache invalidation failed")
	}

	metrics.UsersDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
