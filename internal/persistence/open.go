package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
)

// Backend is an opened Store together with its lifecycle hooks.
type Backend struct {
	Driver string
	Store  Store

	ping  func(context.Context) error
	close func()
}

// Ping checks the backend is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	if b == nil || b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases connections and file handles.
func (b *Backend) Close() {
	if b != nil && b.close != nil {
		b.close()
	}
}

// Open builds the Store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	driver := cfg.Storage.Driver
	logger = logger.With(zap.String("storage_driver", driver))

	switch driver {
	case config.StorageMemory:
		return &Backend{Driver: driver, Store: NewMemoryStore()}, nil

	case config.StorageFile:
		fs, err := NewFileStore(cfg.Storage.FilePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using file storage", zap.String("path", cfg.Storage.FilePath))
		return &Backend{Driver: driver, Store: fs}, nil

	case config.StorageRedis:
		rdb := NewRedis(cfg.Redis, logger)
		return &Backend{
			Driver: driver,
			Store:  NewRedisStore(rdb.Client, cfg.Redis.KeyPrefix),
			ping:   rdb.Ping,
			close:  rdb.Close,
		}, nil

	case config.StoragePostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if pg.DB() == nil {
			return nil, fmt.Errorf("postgres storage requires POSTGRES_DSN")
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(pg.DB(), "postgres", logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &Backend{
			Driver: driver,
			Store:  NewSQLStore(pg.DB()),
			ping:   pg.Ping,
			close:  pg.Close,
		}, nil

	case config.StorageSQLite:
		db, err := NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		if cfg.SQLite.RunMigrations {
			if err := RunMigrations(db, "sqlite3", logger); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Backend{
			Driver: driver,
			Store:  NewSQLiteStore(db),
			ping:   db.PingContext,
			close:  closeDB(db),
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

func closeDB(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
