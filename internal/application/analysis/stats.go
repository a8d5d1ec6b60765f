package analysis

import (
	"time"

	domain "github.com/bryanwahyu/errexplain/internal/domain/analysis"
	"github.com/bryanwahyu/errexplain/internal/domain/quota"
)

// TimelineDays is the number of daily buckets in History stats.
const TimelineDays = 7

type History struct {
	Records []*domain.Submission `json:"records"`
	Stats   Stats                `json:"stats"`
	Total   int                  `json:"total"`
}

// Stats are computed over exactly the records returned with them.
type Stats struct {
	Total      int            `json:"total"`
	Languages  map[string]int `json:"languages"`
	Severity   map[string]int `json:"severity"`
	Categories map[string]int `json:"categories"`
	Timeline   []DayCount     `json:"timeline"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func buildStats(records []*domain.Submission, now time.Time, loc *time.Location) Stats {
	st := Stats{
		Total:      len(records),
		Languages:  map[string]int{},
		Severity:   map[string]int{},
		Categories: map[string]int{},
		Timeline:   make([]DayCount, TimelineDays),
	}

	today := now.In(loc)
	index := make(map[string]int, TimelineDays)
	for i := 0; i < TimelineDays; i++ {
		d := time.Date(today.Year(), today.Month(), today.Day()-(TimelineDays-1-i), 0, 0, 0, 0, loc).Format(quota.DateLayout)
		st.Timeline[i].Date = d
		index[d] = i
	}

	for _, r := range records {
		st.Languages[r.Language]++
		st.Severity[string(r.Severity)]++
		st.Categories[string(r.Category)]++
		if i, ok := index[r.CreatedAt.In(loc).Format(quota.DateLayout)]; ok {
			st.Timeline[i].Count++
		}
	}
	return st
}
