package read

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/user-accounts/internal/http/middlewarectx"
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

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		mockUser  *models.User
		mockErr   error
		wantCode  int
		wantError string
	}{
		{
			name:     "found",
			userID:   "1",
			mockUser: &models.User{ID: "1", Username: "amy", Email: "amy@x.io", Documents: []string{}},
			wantCode: http.StatusOK,
		},
		{name: "deleted user", userID: "1", mockErr: account.ErrNotFound, wantCode: http.StatusNotFound, wantError: "user not found"},
		{name: "storage failure", userID: "1", mockErr: errors.New("boom"), wantCode: http.StatusInternalServerError, wantError: "internal error"},
		{name: "no user in context", wantCode: http.StatusForbidden, wantError: "token is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.userID != "" {
				svc.On("GetProfile", mock.Anything, tt.userID).Return(tt.mockUser, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

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
