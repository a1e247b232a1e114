// Package accounts собирает сервис учётных записей: хранилище, сессии,
// вложения, бизнес-логику и HTTP-сервер.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	// Регистрация swagger-документа.
	_ "github.com/magabrotheeeer/user-accounts/docs"
	"github.com/magabrotheeeer/user-accounts/internal/cache"
	"github.com/magabrotheeeer/user-accounts/internal/config"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/health"
	"github.com/magabrotheeeer/user-accounts/internal/lib/jwt"
	"github.com/magabrotheeeer/user-accounts/internal/lib/password"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/user-accounts/internal/metrics"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
	"github.com/magabrotheeeer/user-accounts/internal/session"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server  *http.Server
	logger  *slog.Logger
	backend *backend
	cache   *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.accounts.New"

	b, err := newBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = b.close(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fileStore, err := newFileStore(ctx, cfg.Uploads)
	if err != nil {
		_ = b.close(ctx)
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := metrics.New()
	svc := account.NewService(
		logger,
		b.repo,
		password.NewHasher(cfg.PasswordCost),
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		session.NewStore(cacheRedis, cfg.SessionLifetime()),
		fileStore,
		m,
	)

	checkers := map[string]health.Checker{"redis": cacheRedis}
	if b.checker != nil {
		checkers["storage"] = b.checker
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, svc, fileStore, m, checkers)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		backend: b,
		cache:   cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeDeps()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeDeps()
		return err
	}
}

func (a *App) closeDeps() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.backend.close(ctx); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
}
