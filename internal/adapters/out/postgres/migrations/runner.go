package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

const dir = "postgres"

func setup() error {
	goose.SetBaseFS(Postgres)
	return goose.SetDialect("postgres")
}

// Up migrates the schema to the latest version.
func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir)
}

// Down rolls back a single migration.
func Down(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, dir)
}

// Status prints the migration status.
func Status(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, dir)
}
