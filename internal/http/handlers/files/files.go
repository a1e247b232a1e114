// Package files отдаёт загруженные пользователями файлы по имени.
package files

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/uploads"
)

// Opener открывает сохранённый файл.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Handler обрабатывает GET /uploads/{name}.
type Handler struct {
	log   *slog.Logger
	store Opener
}

// New создаёт Handler.
func New(log *slog.Logger, store Opener) *Handler {
	return &Handler{log: log, store: store}
}

// ServeHTTP godoc
// @Summary Загруженный файл
// @Tags Files
// @Produce  octet-stream
// @Param name path string true "Имя файла"
// @Success 200 {file} file
// @Failure 404 {object} response.ErrorResponse
// @Router /uploads/{name} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	name := chi.URLParam(r, "name")
	rc, err := h.store.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, uploads.ErrFileNotFound) || errors.Is(err, uploads.ErrInvalidName) {
			response.JSON(w, r, http.StatusNotFound, response.Error(uploads.ErrFileNotFound.Error()))
			return
		}
		log.Error("failed to open file", slog.String("file", name), sl.Err(err))
		response.JSON(w, r, http.StatusInternalServerError, response.Error("internal error"))
		return
	}
	defer rc.Close()

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn("failed to stream file", slog.String("file", name), sl.Err(err))
	}
}
