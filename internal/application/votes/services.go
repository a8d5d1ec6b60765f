package votes

import (
	"context"
	"strings"

	"github.com/bryanwahyu/errexplain/internal/application"
	"github.com/bryanwahyu/errexplain/internal/domain/apperr"
	domain "github.com/bryanwahyu/errexplain/internal/domain/votes"
)

// MaxFingerprintLen bounds the client-generated fingerprint.
const MaxFingerprintLen = 128

// Shares resolves the solution count of a publicly visible submission and
// returns apperr.ErrNotFound for anything else.
type Shares interface {
	SharedSolutions(ctx context.Context, shareID string) (int, error)
}

// Service implements use-cases untuk Vote
type Service struct {
	Repo   domain.Repository
	Shares Shares
	Clock  application.Clock
}

type VoteCommand struct {
	ShareID         string
	SolutionIndex   int
	UserFingerprint string
	VoteType        domain.VoteType
}

func (c VoteCommand) validate() error {
	switch {
	case strings.TrimSpace(c.ShareID) == "":
		return apperr.Invalid("shareId", "is required")
	case strings.TrimSpace(c.UserFingerprint) == "":
		return apperr.Invalid("userFingerprint", "is required")
	case len(c.UserFingerprint) > MaxFingerprintLen:
		return apperr.Invalid("userFingerprint", "is too long")
	case c.SolutionIndex < 0:
		return apperr.Invalid("solutionIndex", "must not be negative")
	case !c.VoteType.Valid():
		return apperr.Invalid("voteType", "must be helpful or not_helpful")
	}
	return nil
}

// Vote records or overwrites the fingerprint's vote and returns fresh tallies.
func (s *Service) Vote(ctx context.Context, cmd VoteCommand) (domain.Tally, error) {
	if err := cmd.validate(); err != nil {
		return domain.Tally{}, err
	}
	n, err := s.Shares.SharedSolutions(ctx, cmd.ShareID)
	if err != nil {
		return domain.Tally{}, err
	}
	if cmd.SolutionIndex >= n {
		return domain.Tally{}, apperr.Invalid("solutionIndex", "is out of range")
	}

	now := s.Clock.Now().UTC()
	v := &domain.Vote{
		ShareID:         cmd.ShareID,
		SolutionIndex:   cmd.SolutionIndex,
		UserFingerprint: cmd.UserFingerprint,
		VoteType:        cmd.VoteType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Upsert(ctx, v); err != nil {
		return domain.Tally{}, apperr.Upstream("save vote", err)
	}
	t, err := s.Repo.Tally(ctx, cmd.ShareID, cmd.SolutionIndex)
	if err != nil {
		return domain.Tally{}, apperr.Upstream("count votes", err)
	}
	return t, nil
}

// Tallies lists per-solution tallies of a shared submission, one entry per
// solution, zeros included.
func (s *Service) Tallies(ctx context.Context, shareID string) ([]domain.SolutionTally, error) {
	if strings.TrimSpace(shareID) == "" {
		return nil, apperr.Invalid("shareId", "is required")
	}
	n, err := s.Shares.SharedSolutions(ctx, shareID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Repo.TallyByShare(ctx, shareID)
	if err != nil {
		return nil, apperr.Upstream("count votes", err)
	}
	out := make([]domain.SolutionTally, n)
	for i := range out {
		out[i].SolutionIndex = i
	}
	for _, r := range rows {
		if r.SolutionIndex >= 0 && r.SolutionIndex < n {
			out[r.SolutionIndex].Tally = r.Tally
		}
	}
	return out, nil
}
