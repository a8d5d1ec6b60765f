package quota

import "time"

// DefaultDailyLimit is the number of completed analyses a client gets per day.
const DefaultDailyLimit = 5

// DateLayout formats the calendar day a counter belongs to.
const DateLayout = "2006-01-02"

// UsageCounter tracks completed analyses for one client on one day.
// A missing row means zero usage; there is no reset job.
type UsageCounter struct {
	ClientID   string    `json:"clientId"`
	Date       string    `json:"date"`
	UsageCount int       `json:"usageCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Status is what callers see about their quota.
type Status struct {
	Used       int       `json:"used"`
	Remaining  int       `json:"remaining"`
	Limit      int       `json:"limit"`
	CanAnalyze bool      `json:"canAnalyze"`
	ResetsAt   time.Time `json:"resetsAt"`
}

// NewStatus derives a Status from a counter value. Counts above the limit can
// appear after a race and are clamped on read.
func NewStatus(used, limit int, resetsAt time.Time) Status {
	if used < 0 {
		used = 0
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Used:       used,
		Remaining:  remaining,
		Limit:      limit,
		CanAnalyze: used < limit,
		ResetsAt:   resetsAt,
	}
}
