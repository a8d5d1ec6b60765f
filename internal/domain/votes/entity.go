package votes

import "time"

// VoteType enum
type VoteType string

const (
	Helpful    VoteType = "helpful"
	NotHelpful VoteType = "not_helpful"
)

// Valid reports whether t is one of the accepted vote types.
func (t VoteType) Valid() bool {
	return t == Helpful || t == NotHelpful
}

// Vote is unique per (ShareID, SolutionIndex, UserFingerprint).
type Vote struct {
	ShareID         string    `json:"shareId"`
	SolutionIndex   int       `json:"solutionIndex"`
	UserFingerprint string    `json:"userFingerprint"`
	VoteType        VoteType  `json:"voteType"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Tally is computed by counting vote rows, never cached.
type Tally struct {
	Helpful    int `json:"helpful"`
	NotHelpful int `json:"notHelpful"`
	Total      int `json:"total"`
}

// SolutionTally is the tally of one solution of a shared submission.
type SolutionTally struct {
	SolutionIndex int `json:"solutionIndex"`
	Tally
}
