package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventplatform/internal/delivery/http/helpers"
	"eventplatform/internal/delivery/http/middleware"
	"eventplatform/internal/domain"

	"github.com/stretchr/testify/require"
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpErr error
	loginErr  error
	getErr    error
	token     string
	user      *domain.User
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	if f.signUpErr != nil {
		return "", nil, f.signUpErr
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func TestAuthController_SignUp(t *testing.T) {
	alice := &domain.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}

	tests := []struct {
		name       string
		body       string
		svc        *fakeAuthService
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"name":"Alice","email":"alice@example.com","password":"correct horse"}`,
			svc:        &fakeAuthService{token: "tok", user: alice},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       `{"email":"alice@example.com"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad email",
			body:       `{"name":"Alice","email":"nope","password":"correct horse"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			body:       `{"name":"Alice","email":"alice@example.com","password":"short"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"name":"Alice","email":"alice@example.com","password":"correct horse","admin":true}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Alice","email":"alice@example.com","password":"correct horse"}`,
			svc:        &fakeAuthService{signUpErr: domain.ErrDuplicateEmail},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAuthController(testLogger, tt.svc)
			r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			c.SignUp(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var resp AuthSuccessResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			require.Equal(t, "tok", resp.Data.Token)
			require.Equal(t, "Bearer", resp.Data.TokenType)
			require.Equal(t, "alice@example.com", resp.Data.User.Email)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuthService{token: "tok", user: &domain.User{ID: "u1", Email: "alice@example.com"}}
		c := NewAuthController(testLogger, svc)
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"correct horse"}`))
		w := httptest.NewRecorder()

		c.Login(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var resp AuthSuccessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Equal(t, "tok", resp.Data.Token)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &fakeAuthService{loginErr: domain.ErrInvalidCredentials}
		c := NewAuthController(testLogger, svc)
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
		w := httptest.NewRecorder()

		c.Login(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeEnvelope(t, w.Body)
		require.Equal(t, helpers.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		c := NewAuthController(testLogger, &fakeAuthService{})
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		c.Login(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthController_Me(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuthService{user: &domain.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}}
		c := NewAuthController(testLogger, svc)
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		r = r.WithContext(middleware.SetUserID(r.Context(), "u1"))
		w := httptest.NewRecorder()

		c.Me(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		// Password hash and salt never serialize.
		require.NotContains(t, w.Body.String(), "password")
		require.NotContains(t, w.Body.String(), "salt")
	})

	t.Run("missing auth", func(t *testing.T) {
		c := NewAuthController(testLogger, &fakeAuthService{})
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		w := httptest.NewRecorder()

		c.Me(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user gone", func(t *testing.T) {
		svc := &fakeAuthService{getErr: domain.ErrNotFound}
		c := NewAuthController(testLogger, svc)
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		r = r.WithContext(middleware.SetUserID(r.Context(), "ghost"))
		w := httptest.NewRecorder()

		c.Me(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
