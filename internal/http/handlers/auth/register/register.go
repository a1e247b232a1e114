// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Принимает multipart/form-data с полями и вложениями (profilePic, documents)
// либо JSON/urlencoded без вложений. Проверка полей выполняется сервисом,
// обработчик только собирает ввод и переводит ошибки в HTTP-статусы.
package register

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/request"
	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/models"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

// Request — входные данные для регистрации.
type Request struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Gender   string `json:"gender" form:"gender"`
}

// Service описывает регистрацию в сервисе аккаунтов.
type Service interface {
	Register(ctx context.Context, draft models.Draft, files account.Files) (*models.User, error)
}

// Handler обрабатывает POST /register.
type Handler struct {
	log       *slog.Logger
	svc       Service
	maxMemory int64
}

// New создаёт Handler. maxMemory ограничивает память под multipart форму.
func New(log *slog.Logger, svc Service, maxMemory int64) *Handler {
	return &Handler{
		log:       log,
		svc:       svc,
		maxMemory: maxMemory,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя. Принимает до одного profilePic и до трёх documents.
// @Tags Auth
// @Accept  json,mpfd
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ValidationResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Почта уже занята"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.Decode(r, &req, h.maxMemory); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(request.ErrBadBody.Error()))
		return
	}
	log.Debug("request body decoded", slog.String("username", req.Username), slog.String("email", req.Email))

	files, closeAll, err := collectFiles(r)
	defer closeAll()
	if err != nil {
		log.Error("failed to open uploaded file", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid uploaded file"))
		return
	}

	user, err := h.svc.Register(r.Context(), models.Draft{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
	}, files)
	if err != nil {
		status, resp := response.FromError(err)
		if status == http.StatusInternalServerError {
			log.Error("registration failed", sl.Err(err))
		} else {
			log.Info("registration rejected", sl.Err(err))
		}
		response.JSON(w, r, status, resp)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	response.JSON(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"message": "Registration successful",
		"user":    user,
	}))
}

// collectFiles открывает вложения multipart формы. Возвращённую функцию
// закрытия нужно вызвать в любом случае.
func collectFiles(r *http.Request) (account.Files, func(), error) {
	var (
		files  account.Files
		opened []multipart.File
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	if r.MultipartForm == nil {
		return files, closeAll, nil
	}

	open := func(field string) ([]account.Upload, error) {
		var out []account.Upload
		for _, fh := range r.MultipartForm.File[field] {
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", field, fh.Filename, err)
			}
			opened = append(opened, f)
			out = append(out, account.Upload{Name: fh.Filename, Content: f})
		}
		return out, nil
	}

	var err error
	if files.ProfilePic, err = open("profilePic"); err != nil {
		return files, closeAll, err
	}
	if files.Documents, err = open("documents"); err != nil {
		return files, closeAll, err
	}
	return files, closeAll, nil
}
