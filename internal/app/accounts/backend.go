package accounts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/user-accounts/internal/config"
	"github.com/magabrotheeeer/user-accounts/internal/http/handlers/health"
	"github.com/magabrotheeeer/user-accounts/internal/migrations"
	"github.com/magabrotheeeer/user-accounts/internal/services/account"
	"github.com/magabrotheeeer/user-accounts/internal/storage/jsonfile"
	"github.com/magabrotheeeer/user-accounts/internal/storage/mongo"
	"github.com/magabrotheeeer/user-accounts/internal/storage/postgres"
	"github.com/magabrotheeeer/user-accounts/internal/uploads"
)

// backend выбранное хранилище пользователей вместе с проверкой и закрытием.
type backend struct {
	repo    account.UserRepository
	checker health.Checker
	close   func(ctx context.Context) error
}

// newBackend открывает хранилище, указанное в конфиге. Выбор делается один раз при старте.
func newBackend(ctx context.Context, cfg config.Storage, log *slog.Logger) (*backend, error) {
	const op = "app.accounts.newBackend"

	switch cfg.Backend {
	case config.BackendFile:
		s, err := jsonfile.New(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("using file storage", slog.String("path", cfg.FilePath))
		return &backend{repo: s, close: func(context.Context) error { return nil }}, nil

	case config.BackendMongo:
		s, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("using mongo storage", slog.String("database", cfg.MongoDatabase))
		return &backend{repo: s, checker: s, close: s.Close}, nil

	case config.BackendPostgres:
		s, err := postgres.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		version, err := migrations.Run(s.DB, cfg.MigrationsPath)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("using postgres storage", slog.Uint64("schema_version", uint64(version)))
		return &backend{repo: s, checker: s, close: func(context.Context) error { return s.Close() }}, nil

	default:
		return nil, fmt.Errorf("%s: unknown storage backend %q", op, cfg.Backend)
	}
}

// newFileStore открывает хранилище вложений: локальный каталог или MinIO.
func newFileStore(ctx context.Context, cfg config.Uploads) (uploads.Store, error) {
	const op = "app.accounts.newFileStore"

	switch cfg.UploadsBackend {
	case config.UploadsMinio:
		s, err := uploads.NewMinio(ctx, cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	default:
		s, err := uploads.NewLocal(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	}
}
