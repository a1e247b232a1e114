// Package lookup реализует поиск одного пользователя по ID или почте.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

// Service описывает поиск пользователя.
type Service interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler обрабатывает GET /user/{id} и GET /user/email/{email}.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Пользователь по ID или почте
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path string false "ID пользователя"
// @Param email path string false "Почта пользователя"
// @Success 200 {object} response.Response "Пользователь без хеша пароля"
// @Failure 401 {object} response.ErrorResponse "Невалидный токен"
// @Failure 403 {object} response.ErrorResponse "Токен не передан"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /user/{id} [get]
// @Router /user/email/{email} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.lookup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var (
		user *models.User
		err  error
	)
	if email := chi.URLParam(r, "email"); email != "" {
		user, err = h.svc.FindUserByEmail(r.Context(), email)
	} else {
		user, err = h.svc.GetProfile(r.Context(), chi.URLParam(r, "id"))
	}
	if err != nil {
		status, resp := response.FromError(err)
		if !errors.Is(err, account.ErrNotFound) {
			log.Error("failed to find user", sl.Err(err))
		}
		response.JSON(w, r, status, resp)
		return
	}

	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
