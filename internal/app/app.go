package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskrabbit/internal/config"
	"github.com/adanyl0v/taskrabbit/internal/services"
	"github.com/adanyl0v/taskrabbit/internal/storage"
)

// App owns the storage backend and the services built on top of it.
// It is constructed once and handed to the HTTP server or the CLI.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	Storage     *storage.LocalStorage
	Tasks       services.TaskService
	Auth        services.AuthService
	Analytics   services.AnalyticsService
	Preferences services.PreferencesService

	backend storage.Backend
	pgPool  *pgxpool.Pool
}

// New opens the configured backend, wires the services and restores
// the persisted session.
func New(ctx context.Context, logger zerolog.Logger, cfg *config.Config) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.Storage = storage.NewLocalStorage(logger.With().Str("component", "storage").Logger(), a.backend)

	identity, err := a.newIdentityProvider()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Tasks = services.NewTaskService(ctx, logger.With().Str("component", "tasks").Logger(), a.Storage)
	a.Auth = services.NewAuthService(
		logger.With().Str("component", "auth").Logger(),
		a.Storage,
		identity,
		cfg.Auth.Issuer,
		[]byte(cfg.Auth.SigningKey),
		cfg.Auth.TokenTTL,
	)
	a.Analytics = services.NewAnalyticsService(logger.With().Str("component", "analytics").Logger(), a.Tasks)
	a.Preferences = services.NewPreferencesService(
		ctx,
		logger.With().Str("component", "preferences").Logger(),
		a.Storage,
	)

	state := a.Auth.Restore(ctx)
	logger.Debug().
		Str("auth_state", string(state)).
		Msg("initialized application")
	return a, nil
}

func (a *App) openBackend(ctx context.Context) error {
	cfg := a.Config.Storage

	switch cfg.Driver {
	case config.StorageDriverMemory:
		a.backend = storage.NewMemoryBackend()
	case config.StorageDriverFile:
		dir, err := storageDir(cfg)
		if err != nil {
			return err
		}
		backend, err := storage.NewFileBackend(dir)
		if err != nil {
			a.Logger.Error().
				Err(err).
				Str("dir", dir).
				Msg("failed to open file storage")
			return err
		}
		a.Logger.Debug().
			Str("path", backend.Path()).
			Msg("opened file storage")
		a.backend = backend
	case config.StorageDriverSQLite:
		dbPath := cfg.SQLitePath
		if dbPath == "" {
			dir, err := storageDir(cfg)
			if err != nil {
				return err
			}
			dbPath = filepath.Join(dir, ".taskrabbit", "store.db")
		}
		backend, err := storage.NewSQLiteBackend(dbPath)
		if err != nil {
			a.Logger.Error().
				Err(err).
				Str("path", dbPath).
				Msg("failed to open sqlite storage")
			return err
		}
		a.Logger.Debug().
			Str("path", dbPath).
			Msg("opened sqlite storage")
		a.backend = backend
	case config.StorageDriverPostgres:
		pool, err := ConnectPostgres(ctx, a.Logger, a.Config.Postgres)
		if err != nil {
			return err
		}
		backend, err := storage.NewPostgresBackend(ctx, pool, cfg.Namespace)
		if err != nil {
			pool.Close()
			a.Logger.Error().
				Err(err).
				Msg("failed to open postgres storage")
			return err
		}
		a.pgPool = pool
		a.backend = backend
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
	return nil
}

func (a *App) newIdentityProvider() (services.IdentityProvider, error) {
	logger := a.Logger.With().Str("component", "identity").Logger()

	switch a.Config.Auth.Provider {
	case config.AuthProviderMock:
		a.Logger.Info().Msg("using the mock identity provider, any credentials are accepted")
		return services.NewMockIdentityProvider(logger, a.Config.Auth.MockLatency), nil
	case config.AuthProviderLocal:
		return services.NewLocalIdentityProvider(logger, a.Storage), nil
	default:
		return nil, fmt.Errorf("unknown auth provider: %s", a.Config.Auth.Provider)
	}
}

func (a *App) Close() {
	if a.backend != nil {
		err := a.backend.Close()
		if err != nil {
			a.Logger.Error().
				Err(err).
				Msg("failed to close storage")
		}
	}
	if a.pgPool != nil {
		a.pgPool.Close()
		a.Logger.Info().Msg("disconnected from postgres")
	}
}

func storageDir(cfg config.StorageConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return home, nil
}
