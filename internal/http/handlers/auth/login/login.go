// Package login реализует HTTP-обработчик входа пользователя.
//
// Принимает usernameOrEmail и password в JSON или форме, выпускает JWT
// и открывает серверную сессию, ID которой уходит клиенту в cookie.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/request"
	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

// Request — входные данные для авторизации.
type Request struct {
	UsernameOrEmail string `json:"usernameOrEmail" form:"usernameOrEmail"`
	Password        string `json:"password" form:"password"`
}

// Service описывает вход в сервисе аккаунтов.
type Service interface {
	Login(ctx context.Context, identifier, password string) (*account.LoginResult, error)
}

// Options настройки cookie сессии и ответа на ошибки входа.
type Options struct {
	CookieName string
	CookieTTL  time.Duration
	Secure     bool
	// UniformErrors отвечает 401 "invalid credentials" и на неизвестного
	// пользователя, и на неверный пароль.
	UniformErrors bool
}

// Handler обрабатывает POST /login.
type Handler struct {
	log  *slog.Logger
	svc  Service
	opts Options
}

// New создаёт Handler.
func New(log *slog.Logger, svc Service, opts Options) *Handler {
	return &Handler{
		log:  log,
		svc:  svc,
		opts: opts,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по имени или почте и паролю. Возвращает JWT и ставит cookie сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.ValidationResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверный пароль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.Decode(r, &req, 0); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(request.ErrBadBody.Error()))
		return
	}

	res, err := h.svc.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if h.opts.UniformErrors && errors.Is(err, account.ErrNotFound) {
			err = account.ErrInvalidCredentials
		}
		status, resp := response.FromError(err)
		if status == http.StatusInternalServerError {
			log.Error("login failed", sl.Err(err))
		} else {
			log.Info("login rejected", slog.String("identifier", req.UsernameOrEmail), sl.Err(err))
		}
		response.JSON(w, r, status, resp)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    res.SessionID,
		Path:     "/",
		MaxAge:   int(h.opts.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("login success", slog.String("user_id", res.User.UserID))
	response.JSON(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	}))
}
