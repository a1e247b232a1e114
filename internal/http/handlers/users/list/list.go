// Package list реализует HTTP-обработчик списка пользователей.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/models"
)

// Service описывает получение списка пользователей.
type Service interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Handler обрабатывает GET /getAllUser.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Пользователи без хешей паролей"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 403 {object} response.ErrorResponse "Токен не передан"
// @Router /getAllUser [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		status, resp := response.FromError(err)
		log.Error("failed to list users", sl.Err(err))
		response.JSON(w, r, status, resp)
		return
	}

	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"users": users,
	}))
}
