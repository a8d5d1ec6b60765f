package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlstore"
)

//go:embed schema.sql
var schema string

// Dialect is the MySQL flavour of the shared repositories.
var Dialect = sqlstore.Dialect{
	Name:        "mysql",
	EnsureUsage: `INSERT IGNORE INTO daily_usage (client_id, usage_date, usage_count, updated_at) VALUES (?, ?, 0, ?)`,
	UpsertVote: `
INSERT INTO solution_votes
(share_id, solution_index, user_fingerprint, vote_type, created_at, updated_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 vote_type=VALUES(vote_type),
 updated_at=VALUES(updated_at)`,
	Schema: schema,
}

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	return sqlstore.Migrate(ctx, db, Dialect)
}
