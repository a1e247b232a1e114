package accounts

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/user-accounts/internal/config"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/dashboard"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/files"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/health"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/profile/read"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/profile/remove"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/users/list"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/users/lookup"
	"github.com/magabrotheeeer/user-accounts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-accounts/internal/metrics"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
	"github.com/magabrotheeeer/user-accounts/internal/uploads"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc *account.Service,
	fileStore uploads.Store, m *metrics.Metrics, checkers map[string]health.Checker) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		m.Middleware,
	)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Открытые конечные точки
	r.Post("/register", register.New(logger, svc, cfg.MaxMemory).ServeHTTP)
	r.Post("/login", login.New(logger, svc, login.Options{
		CookieName:    cfg.CookieName,
		CookieTTL:     cfg.SessionLifetime(),
		Secure:        cfg.SecureCookie,
		UniformErrors: cfg.UniformErrors,
	}).ServeHTTP)
	r.Get("/logout", logout.New(logger, svc, cfg.CookieName).ServeHTTP)
	r.Get("/dashboard", dashboard.New(logger, svc, cfg.CookieName).ServeHTTP)
	r.Get("/uploads/{name}", files.New(logger, fileStore).ServeHTTP)

	// Группа с проверкой токена
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.Auth(svc, cfg.CookieName, logger))
		r.Get("/profile", read.New(logger, svc).ServeHTTP)
		r.Post("/updateProfileData", update.New(logger, svc).ServeHTTP)
		r.Post("/deleteProfileData", remove.New(logger, svc).ServeHTTP)

		userLookup := lookup.New(logger, svc)
		r.Get("/getAllUser", list.New(logger, svc).ServeHTTP)
		r.Get("/user/{id}", userLookup.ServeHTTP)
		r.Get("/user/email/{email}", userLookup.ServeHTTP)
	})

	r.Get("/health", health.New(logger, checkers).ServeHTTP)
	r.Handle("/metrics", m.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
