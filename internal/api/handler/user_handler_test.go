package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/users-service/internal/core/domain"
	"github.com/99minutos/users-service/internal/core/ports"
)

type stubUserService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	authFn     func(ctx context.Context, email, password string) (*domain.User, error)
	updateFn   func(ctx context.Context, id string, in ports.UpdateInput) (*domain.User, error)
	deleteFn   func(ctx context.Context, id string) (bool, error)
}

func (s *stubUserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authFn(ctx, email, password)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UpdateInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, id string) (bool, error) {
	return s.deleteFn(ctx, id)
}

type stubTokenIssuer struct {
	issueFn func(ctx context.Context, userID string) (*ports.IssuedToken, error)
}

func (s *stubTokenIssuer) Issue(ctx context.Context, userID string) (*ports.IssuedToken, error) {
	return s.issueFn(ctx, userID)
}

type stubTokenCache struct {
	stored      map[string]string
	invalidated []string
}

func newStubTokenCache() *stubTokenCache {
	return &stubTokenCache{stored: make(map[string]string)}
}

func (s *stubTokenCache) Store(_ context.Context, userID, token string, _ time.Duration) error {
	s.stored[userID] = token
	return nil
}

func (s *stubTokenCache) Invalidate(_ context.Context, userID string) error {
	s.invalidated = append(s.invalidated, userID)
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newTestHandler(users ports.UserService, tokens ports.TokenIssuer, cache ports.TokenCache) *UserHandler {
	return NewUserHandler(users, tokens, cache, zerolog.Nop())
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

const registerBody = `{"first_name":"Ada","last_name":"Lovelace","email":"a@b.com","password":"secret1","role":"Admin","birth_date":"1990-06-15T00:00:00Z"}`

func TestUserHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "a@b.com" || in.Role != "Admin" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "id1", Email: in.Email, Role: domain.RoleAdmin}, nil
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/users/register", registerBody), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "id1" || resp["role"] != "Admin" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["hashed_password"]; leaked {
		t.Fatalf("hashed password leaked in response")
	}
}

func TestUserHandler_Register_DuplicateEmail(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/users/register", registerBody), rec)

	_ = h.Register(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUserHandler_Register_ShortPassword(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	body := strings.Replace(registerBody, `"secret1"`, `"tiny"`, 1)
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/users/register", body), rec)

	_ = h.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/users/register", "not-json"), rec)

	_ = h.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	var stampedUpdate *ports.UpdateInput

	users := &stubUserService{
		authFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if email != "a@b.com" || password != "secret1" {
				t.Fatalf("unexpected credentials: %s %s", email, password)
			}
			return &domain.User{ID: "id1", Email: email, Role: domain.RoleUser}, nil
		},
		updateFn: func(_ context.Context, id string, in ports.UpdateInput) (*domain.User, error) {
			stampedUpdate = &in
			return &domain.User{ID: id, Email: "a@b.com", Role: domain.RoleUser, LastLogin: in.LastLogin, JWTToken: in.JWTToken}, nil
		},
	}
	tokens := &stubTokenIssuer{
		issueFn: func(_ context.Context, userID string) (*ports.IssuedToken, error) {
			return &ports.IssuedToken{
				User:      &domain.User{ID: userID},
				Token:     "signed.jwt.token",
				ExpiresAt: expiresAt,
			}, nil
		},
	}
	cache := newStubTokenCache()
	h := newTestHandler(users, tokens, cache)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/users/login", `{"email":"a@b.com","password":"secret1"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if stampedUpdate == nil || stampedUpdate.LastLogin == nil {
		t.Fatalf("last login was not stamped")
	}
	if stampedUpdate.JWTToken != "signed.jwt.token" {
		t.Fatalf("issued token not persisted on the record")
	}
	if cache.stored["id1"] != "signed.jwt.token" {
		t.Fatalf("token not cached: %+v", cache.stored)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed.jwt.token" {
		t.Fatalf("token missing from response: %+v", resp)
	}
	if _, ok := resp["expires_at"]; !ok {
		t.Fatalf("expires_at missing from response")
	}
	if _, ok := resp["user"].(map[string]any); !ok {
		t.Fatalf("user missing from response")
	}
}

func TestUserHandler_Login_UniformUnauthorized(t *testing.T) {
	e := newTestEcho()

	// Same handler behaviour whether the email is unknown or the
	// password is wrong: the service collapses both into
	// ErrInvalidCredentials and the response must not differ.
	users := &stubUserService{
		authFn: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	var bodies []string
	for _, payload := range []string{
		`{"email":"ghost@b.com","password":"secret1"}`,
		`{"email":"a@b.com","password":"wrongpw"}`,
	} {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/users/login", payload), rec)
		_ = h.Login(c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("failure responses differ: %q vs %q", bodies[0], bodies[1])
	}
}

func TestUserHandler_Update_Success(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		updateFn: func(_ context.Context, id string, in ports.UpdateInput) (*domain.User, error) {
			if id != "id1" || in.FirstName != "Grace" {
				t.Fatalf("unexpected args: %s %+v", id, in)
			}
			return &domain.User{ID: id, FirstName: in.FirstName, Role: domain.RoleUser}, nil
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/users/id1", `{"first_name":"Grace"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("id1")
	c.Set("role", "User")
	c.Set("user_id", "id1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_NotFound(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		updateFn: func(_ context.Context, _ string, _ ports.UpdateInput) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/users/ghost", `{"first_name":"Grace"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	c.Set("role", "Admin")
	c.Set("user_id", "admin1")

	_ = h.Update(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_Update_MissingClaims(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		updateFn: func(_ context.Context, _ string, _ ports.UpdateInput) (*domain.User, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/users/id1", `{}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("id1")

	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestUserHandler_Delete_Success(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		deleteFn: func(_ context.Context, id string) (bool, error) {
			if id != "id1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return true, nil
		},
	}
	cache := newStubTokenCache()
	h := newTestHandler(users, nil, cache)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/users/id1", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("id1")
	c.Set("role", "Admin")
	c.Set("user_id", "admin1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "id1" {
		t.Fatalf("cached token not invalidated: %+v", cache.invalidated)
	}
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		deleteFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
	}
	h := newTestHandler(users, nil, newStubTokenCache())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/users/ghost", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	c.Set("role", "Admin")
	c.Set("user_id", "admin1")

	_ = h.Delete(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
