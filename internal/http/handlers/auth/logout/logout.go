// Package logout реализует HTTP-обработчик выхода: закрывает серверную сессию
// и очищает cookie. Выданный ранее bearer-токен действует до истечения.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
)

// Service описывает выход в сервисе аккаунтов.
type Service interface {
	Logout(ctx context.Context, sessionID string) error
}

// Handler обрабатывает GET /logout.
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
// @Summary Выход
// @Description Удаляет серверную сессию и очищает cookie.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия закрыта"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища сессий"
// @Router /logout [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if c, err := r.Cookie(h.cookieName); err == nil && c.Value != "" {
		if err := h.svc.Logout(r.Context(), c.Value); err != nil {
			log.Error("failed to destroy session", sl.Err(err))
			response.JSON(w, r, http.StatusInternalServerError, response.Error("Logout error."))
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"message": "Logged out",
	}))
}
