// Package quota enforces the per-client daily analysis limit.
package quota

import (
	"context"
	"errors"
	"time"

	"github.com/bryanwahyu/errexplain/internal/application"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
	domain "github.com/bryanwahyu/errexplain/internal/domain/quota"
)

// Ledger checks and commits usage against a daily limit.
// Ledger is safe for concurrent use; the atomicity lives in the repository.
type Ledger struct {
	Repo     domain.Repository
	Clock    application.Clock
	Limit    int
	Location *time.Location
}

// NewLedger fills the defaults (limit 5, UTC, system clock).
func NewLedger(repo domain.Repository, clock application.Clock, limit int, loc *time.Location) *Ledger {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if limit <= 0 {
		limit = domain.DefaultDailyLimit
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{Repo: repo, Clock: clock, Limit: limit, Location: loc}
}

// Reservation pins the day a check was made on, so the commit lands on the
// same counter even if midnight passes during the completion call.
type Reservation struct {
	ClientID string
	Date     string
	Used     int
	ResetsAt time.Time
}

func (l *Ledger) today() (string, time.Time) {
	now := l.Clock.Now()
	return now.In(l.Location).Format(domain.DateLayout), application.NextMidnight(now, l.Location)
}

// Check reads today's counter. It returns *domain.ExceededError once the
// client has used the whole limit.
func (l *Ledger) Check(ctx context.Context, clientID string) (Reservation, error) {
	if clientID == "" {
		return Reservation{}, apperr.Invalid("clientId", "is required")
	}
	date, resetsAt := l.today()
	used, err := l.Repo.Get(ctx, clientID, date)
	if err != nil {
		return Reservation{}, apperr.Upstream("read usage", err)
	}
	if used >= l.Limit {
		return Reservation{}, &domain.ExceededError{Limit: l.Limit, ResetsAt: resetsAt}
	}
	return Reservation{ClientID: clientID, Date: date, Used: used, ResetsAt: resetsAt}, nil
}

// Commit consumes one unit on the reserved day and returns the new count.
// Losing a race against a concurrent commit yields *domain.ExceededError.
func (l *Ledger) Commit(ctx context.Context, r Reservation) (int, error) {
	if r.ClientID == "" || r.Date == "" {
		return 0, errors.New("quota: commit without reservation")
	}
	count, ok, err := l.Repo.IncrementIfBelow(ctx, r.ClientID, r.Date, l.Limit)
	if err != nil {
		return 0, apperr.Upstream("commit usage", err)
	}
	if !ok {
		return count, &domain.ExceededError{Limit: l.Limit, ResetsAt: r.ResetsAt}
	}
	return count, nil
}

// Status reports today's usage for clientID.
func (l *Ledger) Status(ctx context.Context, clientID string) (domain.Status, error) {
	if clientID == "" {
		return domain.Status{}, apperr.Invalid("clientId", "is required")
	}
	date, resetsAt := l.today()
	used, err := l.Repo.Get(ctx, clientID, date)
	if err != nil {
		return domain.Status{}, apperr.Upstream("read usage", err)
	}
	return domain.NewStatus(used, l.Limit, resetsAt), nil
}

// Remaining is the number of analyses left after count was reached.
func (l *Ledger) Remaining(count int) int {
	return domain.NewStatus(count, l.Limit, time.Time{}).Remaining
}
