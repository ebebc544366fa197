package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/t3-store/internal/apperror"
	"github.com/rocketscienceinc/t3-store/internal/config"
	"github.com/rocketscienceinc/t3-store/internal/repository"
	"github.com/rocketscienceinc/t3-store/internal/repository/storage"
)

// openStateRepository - connects the storage selected by the driver and returns the state repository on it
// with the function releasing the connection.
func openStateRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.StateRepository, func(), error) {
	log := logger.With("method", "openStateRepository", "driver", conf.Storage.Driver)
	key := conf.Storage.Key

	switch conf.Storage.Driver {
	case config.DriverMemory:
		return repository.NewMemoryStateRepository(storage.NewMemoryStorage(), key), func() {}, nil

	case config.DriverRedis:
		addr := conf.Redis.GetRedisAddr()
		if addr == "" {
			return nil, nil, apperror.ErrNoStorageAddress
		}

		redisStorage, err := storage.NewRedisStorage(ctx, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRedisStateRepository(redisStorage.Connection, key), closer(log, redisStorage), nil

	case config.DriverSQLite:
		if conf.SQLite.Path == "" {
			return nil, nil, apperror.ErrNoStorageAddress
		}

		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		repo := repository.NewSQLiteStateRepository(sqliteStorage.Connection, key, conf.SQLite.PollInterval)

		return repo, closer(log, sqliteStorage), nil

	case config.DriverPostgres:
		if conf.Postgres.DSN == "" {
			return nil, nil, apperror.ErrNoStorageAddress
		}

		postgresStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		if err = postgresStorage.Init(ctx); err != nil {
			_ = postgresStorage.Close()
			return nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
		}

		return repository.NewPostgresStateRepository(postgresStorage.Connection, key), closer(log, postgresStorage), nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", apperror.ErrUnknownStorage, conf.Storage.Driver)
	}
}

type storageCloser interface {
	Close() error
}

func closer(log *slog.Logger, closable storageCloser) func() {
	return func() {
		if err := closable.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}
}
