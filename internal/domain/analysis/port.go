package analysis

import (
	"context"
	"time"
)

// HistoryLimit is the maximum number of records a history listing returns.
const HistoryLimit = 100

// Repository port for persisting and querying submissions.
// Get, GetByShareID and Delete return apperr.ErrNotFound when nothing matches.
type Repository interface {
	Create(ctx context.Context, s *Submission) error
	Get(ctx context.Context, id SubmissionID) (*Submission, error)
	// GetByShareID only matches shared, non-private submissions.
	GetByShareID(ctx context.Context, shareID string) (*Submission, error)
	// ListByClient returns the client's non-private submissions, newest first.
	ListByClient(ctx context.Context, clientID string, limit int) ([]*Submission, error)
	MarkShared(ctx context.Context, id SubmissionID, at time.Time) error
	Delete(ctx context.Context, id SubmissionID) error
}
