package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/bryanwahyu/errexplain/internal/domain/analysis"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
	"github.com/bryanwahyu/errexplain/internal/domain/votes"
	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlite"
	"github.com/bryanwahyu/errexplain/internal/infra/db/sqlstore"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Connect(ctx, ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// migrations are idempotent
	if err := sqlite.Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	return db
}

func submission(id, client string, created time.Time) *domain.Submission {
	return &domain.Submission{
		ID:           domain.SubmissionID(id),
		ClientID:     client,
		ErrorMessage: "KeyError: 'missing_key'",
		Language:     "Python",
		Fields: domain.Fields{
			Explanation: "dict lookup failed",
			Causes:      []string{"typo", "missing default"},
			Solutions:   []string{"use dict.get", "check keys"},
			Category:    domain.CategoryRuntime,
			Severity:    domain.SeverityLow,
		},
		ShareID:   "share-" + id,
		CreatedAt: created,
	}
}

func TestSubmissionRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewSubmissionRepository(openDB(t), sqlite.Dialect)
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	a := submission("a", "c1", base)
	b := submission("b", "c1", base.Add(time.Hour))
	priv := submission("p", "c1", base.Add(2*time.Hour))
	priv.IsPrivate = true
	other := submission("o", "c2", base)
	for _, s := range []*domain.Submission{a, b, priv, other} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create %s: %v", s.ID, err)
		}
	}

	got, err := repo.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.ErrorMessage != a.ErrorMessage || got.Explanation != a.Explanation || len(got.Causes) != 2 || got.Solutions[1] != "check keys" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(base) || got.SharedAt != nil || got.IsShared || got.IsPrivate {
		t.Fatalf("flags/timestamps mismatch: %+v", got)
	}

	list, err := repo.ListByClient(ctx, "c1", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("list = %v", ids(list))
	}

	if _, err := repo.Get(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing get: %v", err)
	}
}

func TestSubmissionShareVisibility(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewSubmissionRepository(openDB(t), sqlite.Dialect)
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	pub := submission("pub", "c1", now)
	priv := submission("priv", "c1", now)
	priv.IsPrivate = true
	for _, s := range []*domain.Submission{pub, priv} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := repo.GetByShareID(ctx, pub.ShareID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unshared lookup: %v", err)
	}
	for _, id := range []domain.SubmissionID{"pub", "priv"} {
		if err := repo.MarkShared(ctx, id, now.Add(time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	got, err := repo.GetByShareID(ctx, pub.ShareID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsShared || got.SharedAt == nil || !got.SharedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("shared state = %+v", got)
	}
	if _, err := repo.GetByShareID(ctx, priv.ShareID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("private lookup: %v", err)
	}
	if err := repo.MarkShared(ctx, "nope", now); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("mark missing: %v", err)
	}
}

func TestSubmissionDelete(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewSubmissionRepository(openDB(t), sqlite.Dialect)
	if err := repo.Create(ctx, submission("d", "c1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "d"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "d"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestUsageIncrementIfBelow(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewUsageRepository(openDB(t), sqlite.Dialect)

	if n, err := repo.Get(ctx, "c1", "2026-04-01"); err != nil || n != 0 {
		t.Fatalf("fresh counter = %d, %v", n, err)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, granted, err := repo.IncrementIfBelow(ctx, "c1", "2026-04-01", 5)
			if err != nil {
				t.Errorf("increment: %v", err)
				return
			}
			if granted {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ok != 5 {
		t.Fatalf("granted = %d, want 5", ok)
	}
	if n, _ := repo.Get(ctx, "c1", "2026-04-01"); n != 5 {
		t.Fatalf("counter = %d", n)
	}
	if n, _ := repo.Get(ctx, "c1", "2026-04-02"); n != 0 {
		t.Fatalf("next day counter = %d", n)
	}
}

func TestVoteUpsertAndTally(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewVoteRepository(openDB(t), sqlite.Dialect)

	vote := func(idx int, fp string, vt votes.VoteType) {
		t.Helper()
		if err := repo.Upsert(ctx, &votes.Vote{ShareID: "s1", SolutionIndex: idx, UserFingerprint: fp, VoteType: vt}); err != nil {
			t.Fatal(err)
		}
	}

	vote(0, "fp1", votes.Helpful)
	vote(0, "fp1", votes.Helpful)
	tally, err := repo.Tally(ctx, "s1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if tally != (votes.Tally{Helpful: 1, Total: 1}) {
		t.Fatalf("after repeat = %+v", tally)
	}

	vote(0, "fp1", votes.NotHelpful)
	if tally, _ = repo.Tally(ctx, "s1", 0); tally != (votes.Tally{NotHelpful: 1, Total: 1}) {
		t.Fatalf("after switch = %+v", tally)
	}

	vote(2, "fp2", votes.Helpful)
	byShare, err := repo.TallyByShare(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(byShare) != 2 || byShare[0].SolutionIndex != 0 || byShare[1].SolutionIndex != 2 || byShare[1].Helpful != 1 {
		t.Fatalf("by share = %+v", byShare)
	}

	if tally, _ = repo.Tally(ctx, "unknown", 0); tally != (votes.Tally{}) {
		t.Fatalf("empty tally = %+v", tally)
	}
}

func ids(list []*domain.Submission) []domain.SubmissionID {
	out := make([]domain.SubmissionID, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}
