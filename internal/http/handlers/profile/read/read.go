// Package read реализует HTTP-обработчик чтения профиля текущего пользователя.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

// Service описывает чтение профиля.
type Service interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// Handler обрабатывает GET /profile.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Tags Profile
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Профиль"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 403 {object} response.ErrorResponse "Токен не передан"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		status, resp := response.FromError(account.ErrMissingToken)
		response.JSON(w, r, status, resp)
		return
	}

	user, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		status, resp := response.FromError(err)
		log.Error("failed to get profile", slog.String("user_id", userID), sl.Err(err))
		response.JSON(w, r, status, resp)
		return
	}

	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"message": "Profile Data",
		"user":    user,
	}))
}
