package quota

import (
	"errors"
	"fmt"
	"time"
)

// ErrQuotaExceeded indicates the client used up today's analyses.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// ExceededError carries the reset time along with ErrQuotaExceeded.
type ExceededError struct {
	Limit    int
	ResetsAt time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("daily limit of %d analyses reached, resets at %s", e.Limit, e.ResetsAt.Format(time.RFC3339))
}

func (e *ExceededError) Unwrap() error { return ErrQuotaExceeded }
