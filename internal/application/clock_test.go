package application

import (
	"testing"
	"time"
)

func TestNextMidnight(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want time.Time
	}{
		{"utc midday", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), time.UTC, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"month rollover", time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC), nil, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"zone ahead of utc", time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), jakarta, time.Date(2026, 3, 12, 0, 0, 0, 0, jakarta)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextMidnight(tt.now, tt.loc); !got.Equal(tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}
