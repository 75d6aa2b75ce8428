package journal

import (
	"fmt"
	"sort"
	"time"
)

// Period selects the window of a Summary.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod accepts daily, weekly or monthly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Daily, Weekly, Monthly:
		return p, nil
	}
	return "", fmt.Errorf("unknown summary period %q", s)
}

// DayCount is the number of entries created on one day.
type DayCount struct {
	Day   string // yyyy-mm-dd
	Count int
}

// Summarize counts the entries created in the period containing now, per day,
// in now's location. Weeks start on Sunday. The result is sorted by day.
func Summarize(entries []Entry, period Period, now time.Time) []DayCount {
	start, end := bounds(period, now)

	counts := make(map[string]int)
	for _, e := range entries {
		created := e.CreatedAt.In(now.Location())
		if created.Before(start) || !created.Before(end) {
			continue
		}
		counts[created.Format(time.DateOnly)]++
	}

	summary := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		summary = append(summary, DayCount{Day: day, Count: n})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Day < summary[j].Day })
	return summary
}

// bounds returns the half-open interval [start, end) of the period.
func bounds(period Period, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch period {
	case Weekly:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case Monthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}
