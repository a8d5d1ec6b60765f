package votes

import "context"

// Repository port for solution votes.
type Repository interface {
	// Upsert inserts v or overwrites the vote type of the existing triple.
	Upsert(ctx context.Context, v *Vote) error
	Tally(ctx context.Context, shareID string, solutionIndex int) (Tally, error)
	// TallyByShare returns tallies for every solution that has votes.
	TallyByShare(ctx context.Context, shareID string) ([]SolutionTally, error)
}
