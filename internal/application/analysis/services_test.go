package analysis

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bryanwahyu/errexplain/internal/application"
	"github.com/bryanwahyu/errexplain/internal/application/extraction"
	appquota "github.com/bryanwahyu/errexplain/internal/application/quota"
	domain "github.com/bryanwahyu/errexplain/internal/domain/analysis"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
	"github.com/bryanwahyu/errexplain/internal/domain/quota"
)

// ---- stubs ----

type memRepo struct {
	mu        sync.Mutex
	rows      map[domain.SubmissionID]*domain.Submission
	createErr error
}

func newMemRepo() *memRepo { return &memRepo{rows: map[domain.SubmissionID]*domain.Submission{}} }

func (m *memRepo) Create(_ context.Context, s *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) GetByShareID(_ context.Context, shareID string) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ShareID == shareID && s.IsShared && !s.IsPrivate {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memRepo) ListByClient(_ context.Context, clientID string, limit int) ([]*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Submission
	for _, s := range m.rows {
		if s.ClientID == clientID && !s.IsPrivate {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) MarkShared(_ context.Context, id domain.SubmissionID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	s.IsShared = true
	s.SharedAt = &at
	return nil
}

func (m *memRepo) Delete(_ context.Context, id domain.SubmissionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memUsage struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *memUsage) Get(_ context.Context, clientID, date string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[clientID+"|"+date], nil
}

func (m *memUsage) IncrementIfBelow(_ context.Context, clientID, date string, limit int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := clientID + "|" + date
	if m.counts[k] >= limit {
		return m.counts[k], false, nil
	}
	m.counts[k]++
	return m.counts[k], true, nil
}

type stubExtractor struct {
	res   extraction.Result
	err   error
	calls int
}

func (s *stubExtractor) Extract(context.Context, string, string) (extraction.Result, error) {
	s.calls++
	return s.res, s.err
}

type memTranscripts struct{ keys []string }

func (m *memTranscripts) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	m.keys = append(m.keys, key)
	return "mem://" + key, nil
}

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

var day = time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	repo  *memRepo
	usage *memUsage
	ext   *stubExtractor
	arch  *memTranscripts
}

func newFixture() *fixture {
	repo := newMemRepo()
	usage := &memUsage{counts: map[string]int{}}
	ext := &stubExtractor{res: extraction.ParseCompletion(`{"explanation":"e","causes":["c1","c2","c3"],"solutions":["s1","s2","s3"],"category":"Logic Error","severity":"low"}`)}
	arch := &memTranscripts{}
	clock := &stepClock{t: day}
	return &fixture{
		svc: &Service{
			Repo:        repo,
			Ledger:      appquota.NewLedger(usage, application.FixedClock{T: day}, 5, time.UTC),
			Extractor:   ext,
			Transcripts: arch,
			Clock:       clock,
			BaseURL:     "https://errexplain.test/",
		},
		repo:  repo,
		usage: usage,
		ext:   ext,
		arch:  arch,
	}
}

func cmd(client string) AnalyzeCommand {
	return AnalyzeCommand{ClientID: client, ErrorMessage: "TypeError: x is undefined", Language: "JavaScript"}
}

// ---- tests ----

func TestAnalyzeConsumesQuota(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for n := 1; n <= 5; n++ {
		res, err := f.svc.Analyze(ctx, cmd("c1"))
		if err != nil {
			t.Fatalf("analysis %d: %v", n, err)
		}
		if res.RemainingQuota != 5-n {
			t.Fatalf("analysis %d: remaining = %d", n, res.RemainingQuota)
		}
		if res.ID == "" || res.ShareID == "" || res.Degraded {
			t.Fatalf("unexpected result %+v", res)
		}
	}

	_, err := f.svc.Analyze(ctx, cmd("c1"))
	var ex *quota.ExceededError
	if !errors.As(err, &ex) {
		t.Fatalf("6th analysis: expected ExceededError, got %v", err)
	}
	if f.ext.calls != 5 {
		t.Fatalf("extractor must not run once quota is spent, calls = %d", f.ext.calls)
	}
}

func TestAnalyzeValidatesBeforeExternalCalls(t *testing.T) {
	tests := []struct {
		name string
		cmd  AnalyzeCommand
	}{
		{"missing client", AnalyzeCommand{ErrorMessage: "TypeError: x is undefined", Language: "Go"}},
		{"missing language", AnalyzeCommand{ClientID: "c", ErrorMessage: "TypeError: x is undefined"}},
		{"too short", AnalyzeCommand{ClientID: "c", ErrorMessage: "  err  x ", Language: "Go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Analyze(context.Background(), tt.cmd)
			if !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if f.ext.calls != 0 || len(f.repo.rows) != 0 {
				t.Fatal("no external call expected")
			}
		})
	}
}

func TestAnalyzeUpstreamFailureSpendsNothing(t *testing.T) {
	f := newFixture()
	f.ext.err = apperr.Upstream("completion", errors.New("timeout"))

	_, err := f.svc.Analyze(context.Background(), cmd("c1"))
	if !errors.Is(err, apperr.ErrUpstreamUnavailable) {
		t.Fatalf("got %v", err)
	}
	if len(f.repo.rows) != 0 || len(f.usage.counts) != 0 {
		t.Fatal("upstream failure must not persist or commit")
	}

	f = newFixture()
	f.repo.createErr = errors.New("disk full")
	if _, err := f.svc.Analyze(context.Background(), cmd("c1")); !errors.Is(err, apperr.ErrUpstreamUnavailable) {
		t.Fatalf("got %v", err)
	}
	if len(f.usage.counts) != 0 {
		t.Fatal("failed store must not commit quota")
	}
}

type racingLedger struct{ Ledger }

func (racingLedger) Commit(context.Context, appquota.Reservation) (int, error) {
	return 5, &quota.ExceededError{Limit: 5}
}

func TestAnalyzeLostRaceRemovesSubmission(t *testing.T) {
	f := newFixture()
	f.svc.Ledger = racingLedger{f.svc.Ledger}

	_, err := f.svc.Analyze(context.Background(), cmd("c1"))
	if !errors.Is(err, quota.ErrQuotaExceeded) {
		t.Fatalf("got %v", err)
	}
	if len(f.repo.rows) != 0 {
		t.Fatal("submission must be removed when the commit loses the race")
	}
}

func TestAnalyzeDegradedIsArchivedAndCommitted(t *testing.T) {
	f := newFixture()
	f.ext.res = extraction.ParseCompletion("sorry, I cannot help")

	res, err := f.svc.Analyze(context.Background(), cmd("c1"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded || res.Analysis.Category != domain.CategoryUnknown {
		t.Fatalf("got %+v", res)
	}
	if res.RemainingQuota != 4 {
		t.Fatalf("degraded analysis still spends quota, remaining = %d", res.RemainingQuota)
	}
	if len(f.arch.keys) != 1 {
		t.Fatalf("transcript keys = %v", f.arch.keys)
	}
}

func TestAnalyzeLanguageHint(t *testing.T) {
	f := newFixture()
	c := cmd("c1")
	c.ErrorMessage = "panic: runtime error: index out of range\ngoroutine 1 [running]:\nmain.go:12"
	c.Language = "Python"

	res, err := f.svc.Analyze(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if res.LanguageHint == nil || res.LanguageHint.Detected != "Go" {
		t.Fatalf("hint = %+v", res.LanguageHint)
	}
}

func TestHistoryRoundTripAndPrivacy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Analyze(ctx, cmd("c1"))
	if err != nil {
		t.Fatal(err)
	}
	priv := cmd("c1")
	priv.IsPrivate = true
	if _, err := f.svc.Analyze(ctx, priv); err != nil {
		t.Fatal(err)
	}
	second := cmd("c1")
	second.Language = "Go"
	second.ErrorMessage = "panic: runtime error"
	if _, err := f.svc.Analyze(ctx, second); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Analyze(ctx, cmd("c2")); err != nil {
		t.Fatal(err)
	}

	h, err := f.svc.History(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if h.Total != 2 || len(h.Records) != 2 {
		t.Fatalf("total = %d", h.Total)
	}
	if h.Records[0].Language != "Go" || h.Records[1].ID != first.ID {
		t.Fatal("history must be newest first")
	}
	for _, r := range h.Records {
		if r.IsPrivate || r.ClientID != "c1" {
			t.Fatalf("leaked record %+v", r)
		}
	}
	got := h.Records[1]
	if got.ErrorMessage != "TypeError: x is undefined" || got.Explanation != "e" || len(got.Causes) != 3 || got.Solutions[2] != "s3" {
		t.Fatalf("round trip mismatch %+v", got)
	}

	st := h.Stats
	if st.Total != 2 || st.Languages["Go"] != 1 || st.Languages["JavaScript"] != 1 {
		t.Fatalf("languages = %v", st.Languages)
	}
	if st.Severity["low"] != 2 || st.Categories["Logic Error"] != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if len(st.Timeline) != TimelineDays || st.Timeline[TimelineDays-1].Date != "2026-06-15" || st.Timeline[TimelineDays-1].Count != 2 {
		t.Fatalf("timeline = %+v", st.Timeline)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.svc.Analyze(ctx, cmd("owner"))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Delete(ctx, "missing", "owner"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
	if err := f.svc.Delete(ctx, res.ID, "intruder"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("intruder: %v", err)
	}
	if err := f.svc.Delete(ctx, res.ID, "owner"); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if err := f.svc.Delete(ctx, res.ID, "owner"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestShareAndLookup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.svc.Analyze(ctx, cmd("owner"))
	if err != nil {
		t.Fatal(err)
	}

	_, notShared := f.svc.LookupShared(ctx, res.ShareID)
	_, unknown := f.svc.LookupShared(ctx, "does-not-exist")
	if !errors.Is(notShared, apperr.ErrNotFound) || notShared != unknown {
		t.Fatalf("unshared and unknown must look the same: %v vs %v", notShared, unknown)
	}

	if _, err := f.svc.Share(ctx, res.ID, "intruder"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("intruder share: %v", err)
	}
	sr, err := f.svc.Share(ctx, res.ID, "owner")
	if err != nil {
		t.Fatal(err)
	}
	if sr.ShareID != res.ShareID {
		t.Fatal("share token must not be regenerated")
	}
	if sr.ShareURL != "https://errexplain.test/shared/"+res.ShareID {
		t.Fatalf("url = %s", sr.ShareURL)
	}

	view, err := f.svc.LookupShared(ctx, res.ShareID)
	if err != nil {
		t.Fatal(err)
	}
	if view.ID != res.ID || view.SharedAt == nil || view.Analysis.Explanation != "e" {
		t.Fatalf("view = %+v", view)
	}
	if n, err := f.svc.SharedSolutions(ctx, res.ShareID); err != nil || n != 3 {
		t.Fatalf("solutions = %d, %v", n, err)
	}
}

func TestSharedPrivateStaysHidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := cmd("owner")
	c.IsPrivate = true
	res, err := f.svc.Analyze(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Share(ctx, res.ID, "owner"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.LookupShared(ctx, res.ShareID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("private record leaked through share lookup: %v", err)
	}
}
