// Package sqlstore implements the repositories over database/sql. Driver
// packages (mysql, postgres, sqlite) supply the Dialect and the schema.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect carries the SQL that differs between drivers.
type Dialect struct {
	Name string
	// Numbered switches ? placeholders to $1, $2, ...
	Numbered bool
	// EnsureUsage inserts a zero counter for (client_id, usage_date, updated_at)
	// unless the row exists.
	EnsureUsage string
	// UpsertVote inserts (share_id, solution_index, user_fingerprint,
	// vote_type, created_at, updated_at) or overwrites vote_type/updated_at.
	UpsertVote string
	// Schema is the DDL applied by Migrate.
	Schema string
}

func (d Dialect) rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// Migrate applies the dialect's schema one statement at a time.
// Every statement is written to be idempotent.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range splitStatements(d.Schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migrate: %w", d.Name, err)
		}
	}
	return nil
}

func splitStatements(schema string) []string {
	var out []string
	for _, part := range strings.Split(schema, ";") {
		var lines []string
		for _, ln := range strings.Split(part, "\n") {
			if t := strings.TrimSpace(ln); t != "" && !strings.HasPrefix(t, "--") {
				lines = append(lines, ln)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}
	return out
}
