// Package db picks the driver package for the configured database.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/errexplain/internal/config"
	"github.com/bryanwahyu/errexplain/internal/infra/db/mysql"
	"github.com/bryanwahyu/errexplain/internal/infra/db/postgres"
	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlite"
	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlstore"
)

// Open connects to the configured database and returns the matching dialect.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, sqlstore.Dialect, error) {
	dsn := cfg.DSN()
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysql.Connect(ctx, dsn)
		return db, mysql.Dialect, err
	case "postgres":
		db, err := postgres.Connect(ctx, dsn)
		return db, postgres.Dialect, err
	case "sqlite":
		db, err := sqlite.Connect(ctx, dsn)
		return db, sqlite.Dialect, err
	}
	return nil, sqlstore.Dialect{}, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// Migrate applies the schema of dialect d.
func Migrate(ctx context.Context, conn *sql.DB, d sqlstore.Dialect) error {
	return sqlstore.Migrate(ctx, conn, d)
}
