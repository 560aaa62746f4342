package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"delivery-tracker/internal/adapters/out/memory"
	"delivery-tracker/internal/adapters/out/postgres"
	"delivery-tracker/internal/adapters/out/postgres/migrations"
	"delivery-tracker/internal/core/ports"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used by goose
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// Storage is the persistence selected by STORAGE_DRIVER.
type Storage struct {
	UoWFactory ports.UnitOfWorkFactory
	close      func() error
}

// Close releases the connection pool, if any.
func (s Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage connects to PostgreSQL, migrating it when DB_AUTO_MIGRATE is set, or
// creates an empty in-memory store.
func OpenStorage(ctx context.Context, cfg Config, logger *slog.Logger) (Storage, error) {
	if cfg.StorageDriver == StorageMemory {
		logger.WarnContext(ctx, "using in-memory storage; data is lost on exit")
		return Storage{UoWFactory: memory.NewUnitOfWorkFactory(memory.NewStore())}, nil
	}

	if cfg.AutoMigrate {
		if err := Migrate(ctx, cfg, migrations.Up); err != nil {
			return Storage{}, err
		}
	}

	db, err := gorm.Open(gorm_postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
	})
	if err != nil {
		return Storage{}, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return Storage{}, fmt.Errorf("get postgres pool: %w", err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return Storage{}, fmt.Errorf("ping postgres: %w", err)
	}

	logger.InfoContext(ctx, "connected to postgres", "host", cfg.DBHost, "db", cfg.DBName)
	return Storage{
		UoWFactory: postgres.NewGormUnitOfWorkFactory(db),
		close:      sqlDB.Close,
	}, nil
}

// Migrate opens a short-lived lib/pq connection and runs step against it.
func Migrate(ctx context.Context, cfg Config, step func(context.Context, *sql.DB) error) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	if err = step(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
