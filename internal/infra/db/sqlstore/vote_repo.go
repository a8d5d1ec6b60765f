package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/errexplain/internal/domain/votes"
)

type VoteRepository struct {
	db *sql.DB
	d  Dialect
}

func NewVoteRepository(db *sql.DB, d Dialect) *VoteRepository {
	return &VoteRepository{db: db, d: d}
}

// Upsert last writer wins on (share_id, solution_index, user_fingerprint).
func (r *VoteRepository) Upsert(ctx context.Context, v *domain.Vote) error {
	now := time.Now().UTC()
	created, updated := v.CreatedAt, v.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = created
	}
	_, err := r.db.ExecContext(ctx, r.d.rebind(r.d.UpsertVote),
		v.ShareID, v.SolutionIndex, v.UserFingerprint, string(v.VoteType), created.UTC(), updated.UTC())
	if err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	return nil
}

const tallyCols = `
COALESCE(SUM(CASE WHEN vote_type = 'helpful' THEN 1 ELSE 0 END), 0),
COALESCE(SUM(CASE WHEN vote_type = 'not_helpful' THEN 1 ELSE 0 END), 0),
COUNT(*)`

// Tally counts rows; there is no cached counter.
func (r *VoteRepository) Tally(ctx context.Context, shareID string, solutionIndex int) (domain.Tally, error) {
	q := `SELECT ` + tallyCols + ` FROM solution_votes WHERE share_id=? AND solution_index=?`
	var t domain.Tally
	if err := r.db.QueryRowContext(ctx, r.d.rebind(q), shareID, solutionIndex).Scan(&t.Helpful, &t.NotHelpful, &t.Total); err != nil {
		return domain.Tally{}, fmt.Errorf("tally votes: %w", err)
	}
	return t, nil
}

func (r *VoteRepository) TallyByShare(ctx context.Context, shareID string) ([]domain.SolutionTally, error) {
	q := `SELECT solution_index,` + tallyCols + `
FROM solution_votes
WHERE share_id=?
GROUP BY solution_index
ORDER BY solution_index`
	rows, err := r.db.QueryContext(ctx, r.d.rebind(q), shareID)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	defer rows.Close()

	var out []domain.SolutionTally
	for rows.Next() {
		var st domain.SolutionTally
		if err := rows.Scan(&st.SolutionIndex, &st.Helpful, &st.NotHelpful, &st.Total); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

var _ domain.Repository = (*VoteRepository)(nil)
