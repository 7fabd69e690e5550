// Package storage builds the configured ports.TicketSnapshotStore.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/ticket-board/internal/adapters/secondary/file"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/memory"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/postgres"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/sqlite"
	"github.com/lorrc/ticket-board/internal/config"
	"github.com/lorrc/ticket-board/internal/core/ports"
)

// Backend is an opened snapshot store plus the resources behind it.
type Backend struct {
	Store  ports.TicketSnapshotStore
	Driver string

	ping  func(ctx context.Context) error
	close func()
}

// Ping reports whether the storage is reachable. Drivers without a
// connection always succeed.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases connections held by the backend.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open creates the snapshot store selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return &Backend{
			Store:  memory.NewTicketSnapshotStore(logger),
			Driver: cfg.Storage.Driver,
		}, nil

	case config.StorageDriverFile:
		store := file.NewTicketSnapshotStore(cfg.Storage.Dir, cfg.Storage.Key, logger)
		logger.Info("using file storage", "path", store.Path())
		return &Backend{Store: store, Driver: cfg.Storage.Driver}, nil

	case config.StorageDriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath, cfg.Storage.Key, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite storage", "path", cfg.Storage.SQLitePath)
		return &Backend{
			Store:  store,
			Driver: cfg.Storage.Driver,
			ping:   store.Ping,
			close:  func() { _ = store.Close() },
		}, nil

	case config.StorageDriverPostgres:
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
				return nil, err
			}
			logger.Info("database migrations applied", "path", cfg.Database.MigrationsPath)
		}

		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("database connection established")
		return &Backend{
			Store:  postgres.NewTicketSnapshotStore(pool, cfg.Storage.Key, logger),
			Driver: cfg.Storage.Driver,
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
