package sqlite

import (
	"context"
	"database/sql"
	_ "embed"

	_ "modernc.org/sqlite"

	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlstore"
)

//go:embed schema.sql
var schema string

// Dialect is the SQLite flavour of the shared repositories.
var Dialect = sqlstore.Dialect{
	Name:        "sqlite",
	EnsureUsage: `INSERT INTO daily_usage (client_id, usage_date, usage_count, updated_at) VALUES (?, ?, 0, ?) ON CONFLICT (client_id, usage_date) DO NOTHING`,
	UpsertVote: `
INSERT INTO solution_votes
(share_id, solution_index, user_fingerprint, vote_type, created_at, updated_at)
VALUES (?,?,?,?,?,?)
ON CONFLICT (share_id, solution_index, user_fingerprint) DO UPDATE SET
 vote_type = excluded.vote_type,
 updated_at = excluded.updated_at`,
	Schema: schema,
}

// Connect opens a SQLite database. A single connection keeps writers serialized
// and lets ":memory:" databases survive across queries.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	return sqlstore.Migrate(ctx, db, Dialect)
}
