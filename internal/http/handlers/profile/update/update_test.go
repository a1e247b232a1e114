package update

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
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

func (m *ServiceMock) UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, userID, upd)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func strPtr(s string) *string { return &s }

func TestUpdateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantUpd   *models.UserUpdate
		mockUser  *models.User
		mockErr   error
		wantCode  int
		wantError string
	}{
		{
			name:     "gender only",
			body:     `{"gender":"x","username":""}`,
			wantUpd:  &models.UserUpdate{Gender: strPtr("x")},
			mockUser: &models.User{ID: "1", Username: "amy", Gender: "x"},
			wantCode: http.StatusOK,
		},
		{
			name:     "password and email",
			body:     `{"password":"another1","email":"new@x.io"}`,
			wantUpd:  &models.UserUpdate{Password: strPtr("another1"), Email: strPtr("new@x.io")},
			mockUser: &models.User{ID: "1", Email: "new@x.io"},
			wantCode: http.StatusOK,
		},
		{
			name:      "email taken",
			body:      `{"email":"bob@x.io"}`,
			wantUpd:   &models.UserUpdate{Email: strPtr("bob@x.io")},
			mockErr:   account.ErrConflict,
			wantCode:  http.StatusConflict,
			wantError: "email already registered",
		},
		{
			name:      "deleted user",
			body:      `{"gender":"x"}`,
			wantUpd:   &models.UserUpdate{Gender: strPtr("x")},
			mockErr:   account.ErrNotFound,
			wantCode:  http.StatusNotFound,
			wantError: "user not found",
		},
		{
			name:      "invalid json",
			body:      `{"gender":`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.wantUpd != nil {
				svc.On("UpdateProfile", mock.Anything, "1", *tt.wantUpd).Return(tt.mockUser, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/updateProfileData", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "1"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "Profile updated.", got["data"].(map[string]any)["message"])
			}
			svc.AssertExpectations(t)
		})
	}
}
