// Package update реализует HTTP-обработчик частичного обновления профиля.
// Незаполненные поля не меняются, новый пароль хешируется сервисом.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-accounts/internal/http/request"
	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

// Request — поля, которые можно обновить. Пустое значение означает "не менять".
type Request struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Gender   string `json:"gender" form:"gender"`
	Password string `json:"password" form:"password"`
}

func (req Request) toUpdate() models.UserUpdate {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return models.UserUpdate{
		Username: opt(req.Username),
		Email:    opt(req.Email),
		Gender:   opt(req.Gender),
		Password: opt(req.Password),
	}
}

// Service описывает обновление профиля.
type Service interface {
	UpdateProfile(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error)
}

// Handler обрабатывает POST /updateProfileData.
type Handler struct {
	log *slog.Logger
	svc Service
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service) *Handler {
	return &Handler{log: log, svc: svc}
}

// ServeHTTP godoc
// @Summary Обновление профиля
// @Tags Profile
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Новые значения полей"
// @Success 200 {object} response.Response "Профиль обновлён"
// @Failure 400 {object} response.ValidationResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Почта уже занята"
// @Router /updateProfileData [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.update"

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

	var req Request
	if err := request.Decode(r, &req, 0); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(request.ErrBadBody.Error()))
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), userID, req.toUpdate())
	if err != nil {
		status, resp := response.FromError(err)
		log.Error("failed to update profile", slog.String("user_id", userID), sl.Err(err))
		response.JSON(w, r, status, resp)
		return
	}

	log.Info("profile updated", slog.String("user_id", userID))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"message": "Profile updated.",
		"user":    user,
	}))
}
