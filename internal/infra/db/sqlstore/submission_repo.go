package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/errexplain/internal/domain/analysis"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
)

type SubmissionRepository struct {
	db *sql.DB
	d  Dialect
}

func NewSubmissionRepository(db *sql.DB, d Dialect) *SubmissionRepository {
	return &SubmissionRepository{db: db, d: d}
}

const submissionCols = `id, client_id, error_message, language, explanation, causes, solutions,
       category, severity, example_code, is_shared, is_private, share_id, shared_at, created_at`

// Create insert Submission record
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	const q = `
INSERT INTO submissions
(id, client_id, error_message, language, explanation, causes, solutions,
 category, severity, example_code, is_shared, is_private, share_id, shared_at, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

	causes, err := encodeList(s.Causes)
	if err != nil {
		return err
	}
	solutions, err := encodeList(s.Solutions)
	if err != nil {
		return err
	}
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC()

	_, err = r.db.ExecContext(ctx, r.d.rebind(q),
		string(s.ID), s.ClientID, s.ErrorMessage, s.Language, s.Explanation, causes, solutions,
		string(s.Category), string(s.Severity), s.ExampleCode, s.IsShared, s.IsPrivate, s.ShareID,
		nullTime(s.SharedAt), created,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	s.CreatedAt = created
	return nil
}

// Get by ID
func (r *SubmissionRepository) Get(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	q := `SELECT ` + submissionCols + ` FROM submissions WHERE id=? LIMIT 1`
	return r.one(ctx, q, string(id))
}

// GetByShareID only matches shared, non-private rows.
func (r *SubmissionRepository) GetByShareID(ctx context.Context, shareID string) (*domain.Submission, error) {
	q := `SELECT ` + submissionCols + ` FROM submissions WHERE share_id=? AND is_shared=? AND is_private=? LIMIT 1`
	return r.one(ctx, q, shareID, true, false)
}

// ListByClient non-private submissions, newest first
func (r *SubmissionRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]*domain.Submission, error) {
	if limit <= 0 || limit > domain.HistoryLimit {
		limit = domain.HistoryLimit
	}
	q := `SELECT ` + submissionCols + ` FROM submissions
WHERE client_id=? AND is_private=?
ORDER BY created_at DESC, id DESC
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, r.d.rebind(q), clientID, false, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) MarkShared(ctx context.Context, id domain.SubmissionID, at time.Time) error {
	const q = `UPDATE submissions SET is_shared=?, shared_at=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, r.d.rebind(q), true, at.UTC(), string(id))
	if err != nil {
		return fmt.Errorf("mark shared: %w", err)
	}
	return expectRow(res)
}

func (r *SubmissionRepository) Delete(ctx context.Context, id domain.SubmissionID) error {
	const q = `DELETE FROM submissions WHERE id=?`
	res, err := r.db.ExecContext(ctx, r.d.rebind(q), string(id))
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return expectRow(res)
}

func (r *SubmissionRepository) one(ctx context.Context, q string, args ...any) (*domain.Submission, error) {
	row := r.db.QueryRowContext(ctx, r.d.rebind(q), args...)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(sc scanner) (*domain.Submission, error) {
	var (
		s                  domain.Submission
		id                 string
		causes, solutions  string
		category, severity string
		sharedAt           sql.NullTime
	)
	if err := sc.Scan(
		&id, &s.ClientID, &s.ErrorMessage, &s.Language, &s.Explanation, &causes, &solutions,
		&category, &severity, &s.ExampleCode, &s.IsShared, &s.IsPrivate, &s.ShareID, &sharedAt, &s.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	s.ID = domain.SubmissionID(id)
	s.Category = domain.Category(category)
	s.Severity = domain.Severity(severity)
	s.CreatedAt = s.CreatedAt.UTC()
	if sharedAt.Valid {
		t := sharedAt.Time.UTC()
		s.SharedAt = &t
	}
	var err error
	if s.Causes, err = decodeList(causes); err != nil {
		return nil, fmt.Errorf("decode causes: %w", err)
	}
	if s.Solutions, err = decodeList(solutions); err != nil {
		return nil, fmt.Errorf("decode solutions: %w", err)
	}
	return &s, nil
}

var _ domain.Repository = (*SubmissionRepository)(nil)

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}
