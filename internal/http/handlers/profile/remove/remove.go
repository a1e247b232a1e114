// Package remove реализует HTTP-обработчик удаления учётной записи.
package remove

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

// Service описывает удаление профиля.
type Service interface {
	DeleteProfile(ctx context.Context, userID string) (*models.User, error)
}

// Handler обрабатывает POST /deleteProfileData.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Удаление учётной записи
// @Tags Profile
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Учётная запись удалена"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /deleteProfileData [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.remove"

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

	if _, err := h.svc.DeleteProfile(r.Context(), userID); err != nil {
		status, resp := response.FromError(err)
		log.Error("failed to delete profile", slog.String("user_id", userID), sl.Err(err))
		response.JSON(w, r, status, resp)
		return
	}

	log.Info("profile deleted", slog.String("user_id", userID))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"message": "Account deleted successfully.",
	}))
}
