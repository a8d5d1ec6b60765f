package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/errexplain/internal/domain/quota"
)

type UsageRepository struct {
	db *sql.DB
	d  Dialect
}

func NewUsageRepository(db *sql.DB, d Dialect) *UsageRepository {
	return &UsageRepository{db: db, d: d}
}

// Get returns 0 when the client has no row for date.
func (r *UsageRepository) Get(ctx context.Context, clientID, date string) (int, error) {
	const q = `SELECT usage_count FROM daily_usage WHERE client_id=? AND usage_date=?`
	var n int
	err := r.db.QueryRowContext(ctx, r.d.rebind(q), clientID, date).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage: %w", err)
	}
	return n, nil
}

// IncrementIfBelow relies on a single conditional UPDATE, so concurrent
// callers can never push the counter past limit.
func (r *UsageRepository) IncrementIfBelow(ctx context.Context, clientID, date string, limit int) (int, bool, error) {
	now := time.Now().UTC()

	// pastikan row ada dulu
	if _, err := r.db.ExecContext(ctx, r.d.rebind(r.d.EnsureUsage), clientID, date, now); err != nil {
		return 0, false, fmt.Errorf("ensure usage row: %w", err)
	}

	const upd = `
UPDATE daily_usage
SET usage_count = usage_count + 1, updated_at = ?
WHERE client_id = ? AND usage_date = ? AND usage_count < ?`
	res, err := r.db.ExecContext(ctx, r.d.rebind(upd), now, clientID, date, limit)
	if err != nil {
		return 0, false, fmt.Errorf("increment usage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("increment usage: %w", err)
	}

	n, err := r.Get(ctx, clientID, date)
	if err != nil {
		return 0, false, err
	}
	return n, affected == 1, nil
}

var _ domain.Repository = (*UsageRepository)(nil)
