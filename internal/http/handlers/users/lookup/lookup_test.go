package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *ServiceMock) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLookupHandler_ServeHTTP(t *testing.T) {
	amy := &models.User{ID: "1", Username: "amy", Email: "amy@x.io", Documents: []string{}}

	tests := []struct {
		name      string
		path      string
		setup     func(m *ServiceMock)
		wantCode  int
		wantError string
	}{
		{
			name:     "by id",
			path:     "/user/1",
			setup:    func(m *ServiceMock) { m.On("GetProfile", mock.Anything, "1").Return(amy, nil).Once() },
			wantCode: http.StatusOK,
		},
		{
			name:     "by email",
			path:     "/user/email/amy@x.io",
			setup:    func(m *ServiceMock) { m.On("FindUserByEmail", mock.Anything, "amy@x.io").Return(amy, nil).Once() },
			wantCode: http.StatusOK,
		},
		{
			name: "unknown id",
			path: "/user/42",
			setup: func(m *ServiceMock) {
				m.On("GetProfile", mock.Anything, "42").Return(nil, account.ErrNotFound).Once()
			},
			wantCode:  http.StatusNotFound,
			wantError: "user not found",
		},
		{
			name: "storage failure",
			path: "/user/email/amy@x.io",
			setup: func(m *ServiceMock) {
				m.On("FindUserByEmail", mock.Anything, "amy@x.io").Return(nil, errors.New("boom")).Once()
			},
			wantCode:  http.StatusInternalServerError,
			wantError: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setup(svc)
			handler := New(newNoopLogger(), svc)

			r := chi.NewRouter()
			r.Get("/user/{id}", handler.ServeHTTP)
			r.Get("/user/email/{email}", handler.ServeHTTP)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				user := got["data"].(map[string]any)["user"].(map[string]any)
				assert.Equal(t, "amy", user["username"])
			}
			svc.AssertExpectations(t)
		})
	}
}
