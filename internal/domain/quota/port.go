package quota

import "context"

// Repository port for daily usage counters.
type Repository interface {
	// Get returns the stored count, or 0 when no row exists.
	Get(ctx context.Context, clientID, date string) (int, error)
	// IncrementIfBelow atomically adds one when the count is below limit,
	// creating the row if needed. ok is false when the count was already at
	// the limit; count is the value after the operation.
	IncrementIfBelow(ctx context.Context, clientID, date string, limit int) (count int, ok bool, err error)
}
