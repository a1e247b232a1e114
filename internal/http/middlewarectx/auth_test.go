package middlewarectx_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-accounts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-accounts/internal/lib/jwt"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Authenticate(ctx context.Context, sessionID, bearer string) (*jwt.Claims, error) {
	args := m.Called(ctx, sessionID, bearer)
	c, _ := args.Get(0).(*jwt.Claims)
	return c, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		cookie     string
		authHeader string
		wantSID    string
		wantBearer string
		mockClaims *jwt.Claims
		mockErr    error
		wantCode   int
		wantError  string
		wantCalled bool
	}{
		{
			name:       "bearer token",
			authHeader: "Bearer tok",
			wantBearer: "tok",
			mockClaims: &jwt.Claims{UserID: "42"},
			wantCode:   http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "session cookie",
			cookie:     "sid-1",
			wantSID:    "sid-1",
			mockClaims: &jwt.Claims{UserID: "42"},
			wantCode:   http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "non bearer header is ignored",
			authHeader: "Basic abc",
			mockErr:    account.ErrMissingToken,
			wantCode:   http.StatusForbidden,
			wantError:  "token is required",
		},
		{
			name:      "missing token",
			mockErr:   account.ErrMissingToken,
			wantCode:  http.StatusForbidden,
			wantError: "token is required",
		},
		{
			name:       "invalid token",
			authHeader: "Bearer broken",
			wantBearer: "broken",
			mockErr:    fmt.Errorf("%w: %w", account.ErrUnauthorized, jwt.ErrInvalidToken),
			wantCode:   http.StatusUnauthorized,
			wantError:  "invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthenticatorMock)
			authMock.On("Authenticate", mock.Anything, tt.wantSID, tt.wantBearer).
				Return(tt.mockClaims, tt.mockErr).Once()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				id, ok := middlewarectx.UserIDFrom(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "42", id)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sid", Value: tt.cookie})
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middlewarectx.Auth(authMock, "sid", newNoopLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantError != "" {
				var got map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
