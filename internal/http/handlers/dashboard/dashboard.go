// Package dashboard отдаёт данные серверной сессии: снимок пользователя и токен,
// сохранённые при входе. Хранилище пользователей не опрашивается.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

// Service описывает чтение сессии.
type Service interface {
	Session(ctx context.Context, sessionID string) (*account.SessionView, error)
}

// Handler обрабатывает GET /dashboard.
type Handler struct {
	log        *slog.Logger
	svc        Service
	cookieName string
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service, cookieName string) *Handler {
	return &Handler{
		log:        log,
		svc:        svc,
		cookieName: cookieName,
	}
}

// ServeHTTP godoc
// @Summary Данные сессии
// @Description Снимок пользователя и токен из серверной сессии.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия активна"
// @Failure 401 {object} response.ErrorResponse "Сессия истекла или закрыта"
// @Failure 403 {object} response.ErrorResponse "Нет cookie сессии"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := ""
	if c, err := r.Cookie(h.cookieName); err == nil {
		sid = c.Value
	}

	view, err := h.svc.Session(r.Context(), sid)
	if err != nil {
		status, resp := response.FromError(err)
		if errors.Is(err, account.ErrUnauthorized) || errors.Is(err, account.ErrMissingToken) {
			log.Debug("no active session", sl.Err(err))
		} else {
			log.Error("failed to read session", sl.Err(err))
		}
		response.JSON(w, r, status, resp)
		return
	}

	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"token":     view.Token,
		"expiresAt": view.ExpiresAt,
		"user":      view.User,
	}))
}
