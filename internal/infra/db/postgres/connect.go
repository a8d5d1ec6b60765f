package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlstore"
)

//go:embed schema.sql
var schema string

// Dialect is the PostgreSQL flavour of the shared repositories.
var Dialect = sqlstore.Dialect{
	Name:        "postgres",
	Numbered:    true,
	EnsureUsage: `INSERT INTO daily_usage (client_id, usage_date, usage_count, updated_at) VALUES (?, ?, 0, ?) ON CONFLICT (client_id, usage_date) DO NOTHING`,
	UpsertVote: `
INSERT INTO solution_votes
(share_id, solution_index, user_fingerprint, vote_type, created_at, updated_at)
VALUES (?,?,?,?,?,?)
ON CONFLICT (share_id, solution_index, user_fingerprint) DO UPDATE SET
 vote_type = EXCLUDED.vote_type,
 updated_at = EXCLUDED.updated_at`,
	Schema: schema,
}

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	return sqlstore.Migrate(ctx, db, Dialect)
}
