package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/bryanwahyu/errexplain/internal/application"
	"github.com/bryanwahyu/errexplain/internal/application/extraction"
	appquota "github.com/bryanwahyu/errexplain/internal/application/quota"
	"github.com/bryanwahyu/errexplain/internal/domain/ai"
	domain "github.com/bryanwahyu/errexplain/internal/domain/analysis"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
	"github.com/bryanwahyu/errexplain/internal/domain/language"
	"github.com/bryanwahyu/errexplain/internal/domain/quota"
)

// MinErrorMessageLen is the fewest non-space characters worth analysing.
const MinErrorMessageLen = 8

// Ledger is the part of the quota ledger the pipeline needs.
type Ledger interface {
	Check(ctx context.Context, clientID string) (appquota.Reservation, error)
	Commit(ctx context.Context, r appquota.Reservation) (int, error)
	Remaining(count int) int
}

// Extractor turns an error message into analysis fields.
type Extractor interface {
	Extract(ctx context.Context, errorMessage, language string) (extraction.Result, error)
}

// Service implements use-cases untuk Submission
// Service is safe for concurrent use.
type Service struct {
	Repo        domain.Repository
	Ledger      Ledger
	Extractor   Extractor
	Transcripts ai.TranscriptStore // optional
	Clock       application.Clock
	Location    *time.Location
	BaseURL     string
	Logger      *slog.Logger
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

//
// ==== USE CASES ====
//

// AnalyzeCommand is one analysis request.
type AnalyzeCommand struct {
	ClientID     string
	ErrorMessage string
	Language     string
	IsPrivate    bool
}

type AnalyzeResult struct {
	ID             domain.SubmissionID `json:"id"`
	ShareID        string              `json:"shareId"`
	Analysis       domain.Fields       `json:"analysis"`
	RemainingQuota int                 `json:"remainingQuota"`
	Degraded       bool                `json:"degraded"`
	LanguageHint   *language.Advice    `json:"languageHint,omitempty"`
}

func (c AnalyzeCommand) validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return apperr.Invalid("clientId", "is required")
	}
	if strings.TrimSpace(c.Language) == "" {
		return apperr.Invalid("language", "is required")
	}
	n := 0
	for _, r := range c.ErrorMessage {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	if n < MinErrorMessageLen {
		return apperr.Invalid("errorMessage", fmt.Sprintf("must contain at least %d characters", MinErrorMessageLen))
	}
	return nil
}

// Analyze runs check → extract → store → commit. Quota is spent only on a
// stored result; a commit that loses a race removes the stored record again.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	if err := cmd.validate(); err != nil {
		return AnalyzeResult{}, err
	}

	reservation, err := s.Ledger.Check(ctx, cmd.ClientID)
	if err != nil {
		return AnalyzeResult{}, err
	}

	message := domain.Truncate(cmd.ErrorMessage, domain.MaxErrorMessageLen)
	lang := domain.Truncate(strings.TrimSpace(cmd.Language), domain.MaxLanguageLen)

	res, err := s.Extractor.Extract(ctx, message, lang)
	if err != nil {
		return AnalyzeResult{}, err
	}

	sub := &domain.Submission{
		ID:           domain.SubmissionID(uuid.NewString()),
		ClientID:     cmd.ClientID,
		ErrorMessage: message,
		Language:     lang,
		Fields:       res.Fields,
		IsPrivate:    cmd.IsPrivate,
		ShareID:      uuid.NewString(),
		CreatedAt:    s.now().UTC(),
	}
	sub.Normalize()
	if err := s.Repo.Create(ctx, sub); err != nil {
		return AnalyzeResult{}, apperr.Upstream("save submission", err)
	}

	count, err := s.Ledger.Commit(ctx, reservation)
	if err != nil {
		// jangan tinggalkan record yang quotanya tidak terpakai
		if derr := s.Repo.Delete(context.WithoutCancel(ctx), sub.ID); derr != nil {
			s.log().Error("compensating delete failed", "id", sub.ID, "error", derr)
		}
		return AnalyzeResult{}, err
	}

	if res.Degraded() {
		s.log().Warn("extraction degraded", "id", sub.ID, "reason", res.Reason)
		s.archive(ctx, sub, res)
	}

	out := AnalyzeResult{
		ID:             sub.ID,
		ShareID:        sub.ShareID,
		Analysis:       sub.Fields,
		RemainingQuota: s.Ledger.Remaining(count),
		Degraded:       res.Degraded(),
	}
	if adv := language.Check(message, language.Label(lang)); adv.Warning != "" {
		out.LanguageHint = &adv
	}
	return out, nil
}

type transcript struct {
	ID        domain.SubmissionID `json:"id"`
	Language  string              `json:"language"`
	Reason    string              `json:"reason"`
	Raw       string              `json:"raw"`
	CreatedAt time.Time           `json:"createdAt"`
}

// archive keeps the raw completion of a degraded extraction. Best effort.
func (s *Service) archive(ctx context.Context, sub *domain.Submission, res extraction.Result) {
	if s.Transcripts == nil {
		return
	}
	b, err := json.Marshal(transcript{ID: sub.ID, Language: sub.Language, Reason: res.Reason, Raw: res.Raw, CreatedAt: sub.CreatedAt})
	if err != nil {
		return
	}
	key := fmt.Sprintf("degraded/%s/%s.json", sub.CreatedAt.Format(quota.DateLayout), sub.ID)
	if _, err := s.Transcripts.Put(ctx, key, "application/json", b); err != nil {
		s.log().Warn("archive transcript failed", "id", sub.ID, "error", err)
	}
}

// History lists the client's non-private submissions with aggregate stats.
func (s *Service) History(ctx context.Context, clientID string) (History, error) {
	if strings.TrimSpace(clientID) == "" {
		return History{}, apperr.Invalid("clientId", "is required")
	}
	rows, err := s.Repo.ListByClient(ctx, clientID, domain.HistoryLimit)
	if err != nil {
		return History{}, apperr.Upstream("list history", err)
	}
	records := make([]*domain.Submission, 0, len(rows))
	for _, r := range rows {
		if r.IsPrivate || !r.OwnedBy(clientID) {
			continue
		}
		records = append(records, r)
		if len(records) == domain.HistoryLimit {
			break
		}
	}
	return History{
		Records: records,
		Stats:   buildStats(records, s.now(), s.loc()),
		Total:   len(records),
	}, nil
}

// Delete removes a submission owned by clientID.
func (s *Service) Delete(ctx context.Context, id domain.SubmissionID, clientID string) error {
	if id == "" {
		return apperr.Invalid("id", "is required")
	}
	if strings.TrimSpace(clientID) == "" {
		return apperr.Invalid("clientId", "is required")
	}
	sub, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !sub.OwnedBy(clientID) {
		return apperr.ErrUnauthorized
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Upstream("delete submission", err)
	}
	return nil
}

type ShareResult struct {
	ShareID  string `json:"shareId"`
	ShareURL string `json:"shareUrl"`
}

// Share marks a submission shared and returns its existing share token.
// Sharing a private submission sets the flag, but lookups keep hiding it.
func (s *Service) Share(ctx context.Context, id domain.SubmissionID, clientID string) (ShareResult, error) {
	if id == "" {
		return ShareResult{}, apperr.Invalid("id", "is required")
	}
	if strings.TrimSpace(clientID) == "" {
		return ShareResult{}, apperr.Invalid("clientId", "is required")
	}
	sub, err := s.get(ctx, id)
	if err != nil {
		return ShareResult{}, err
	}
	if !sub.OwnedBy(clientID) {
		return ShareResult{}, apperr.ErrUnauthorized
	}
	if !sub.IsShared {
		if err := s.Repo.MarkShared(ctx, id, s.now().UTC()); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return ShareResult{}, err
			}
			return ShareResult{}, apperr.Upstream("share submission", err)
		}
	}
	return ShareResult{ShareID: sub.ShareID, ShareURL: s.shareURL(sub.ShareID)}, nil
}

func (s *Service) shareURL(shareID string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/shared/" + shareID
}

// SharedView is the public projection of a shared submission; it omits the owner.
type SharedView struct {
	ID           domain.SubmissionID `json:"id"`
	ShareID      string              `json:"shareId"`
	ErrorMessage string              `json:"errorMessage"`
	Language     string              `json:"language"`
	Category     domain.Category     `json:"category"`
	Severity     domain.Severity     `json:"severity"`
	Timestamp    time.Time           `json:"timestamp"`
	SharedAt     *time.Time          `json:"sharedAt,omitempty"`
	Analysis     domain.Fields       `json:"analysis"`
}

// LookupShared returns a shared, non-private submission. Anything else is
// ErrNotFound, the same as an unknown token.
func (s *Service) LookupShared(ctx context.Context, shareID string) (SharedView, error) {
	sub, err := s.sharedSubmission(ctx, shareID)
	if err != nil {
		return SharedView{}, err
	}
	return SharedView{
		ID:           sub.ID,
		ShareID:      sub.ShareID,
		ErrorMessage: sub.ErrorMessage,
		Language:     sub.Language,
		Category:     sub.Category,
		Severity:     sub.Severity,
		Timestamp:    sub.CreatedAt,
		SharedAt:     sub.SharedAt,
		Analysis:     sub.Fields,
	}, nil
}

// SharedSolutions returns the number of solutions of a publicly visible
// submission; votes use it to bound solution indexes.
func (s *Service) SharedSolutions(ctx context.Context, shareID string) (int, error) {
	sub, err := s.sharedSubmission(ctx, shareID)
	if err != nil {
		return 0, err
	}
	return len(sub.Solutions), nil
}

func (s *Service) sharedSubmission(ctx context.Context, shareID string) (*domain.Submission, error) {
	if strings.TrimSpace(shareID) == "" {
		return nil, apperr.Invalid("shareId", "is required")
	}
	sub, err := s.Repo.GetByShareID(ctx, shareID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Upstream("lookup shared", err)
	}
	if !sub.PubliclyVisible() {
		return nil, apperr.ErrNotFound
	}
	return sub, nil
}

func (s *Service) get(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Upstream("get submission", err)
	}
	return sub, nil
}
