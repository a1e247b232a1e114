package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
)

// Checker зависимость, доступность которой проверяет health.
type Checker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log      *slog.Logger
	checkers map[string]Checker
}

func New(log *slog.Logger, checkers map[string]Checker) *Handler {
	return &Handler{
		log:      log,
		checkers: checkers,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for name, c := range h.checkers {
		if err := c.Ping(ctx); err != nil {
			h.log.Warn("dependency is down", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	render.Status(r, status)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": state,
		"checks": checks,
	}))
}
