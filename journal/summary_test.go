package journal_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-journal-client/journal"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	// Wednesday 13 March 2024.
	now := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)
	at := func(day, hour int) journal.Entry {
		return journal.Entry{CreatedAt: time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)}
	}
	entries := []journal.Entry{
		at(13, 8), at(13, 20), // today
		at(10, 9),             // Sunday, start of this week
		at(9, 23),             // Saturday, last week
		at(1, 0),              // first of the month
		{CreatedAt: time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)},
	}

	require.Equal(t, []journal.DayCount{{Day: "2024-03-13", Count: 2}}, journal.Summarize(entries, journal.Daily, now))
	require.Equal(t, []journal.DayCount{
		{Day: "2024-03-10", Count: 1},
		{Day: "2024-03-13", Count: 2},
	}, journal.Summarize(entries, journal.Weekly, now))
	require.Equal(t, []journal.DayCount{
		{Day: "2024-03-01", Count: 1},
		{Day: "2024-03-09", Count: 1},
		{Day: "2024-03-10", Count: 1},
		{Day: "2024-03-13", Count: 2},
	}, journal.Summarize(entries, journal.Monthly, now))
}

func TestSummarize_Empty(t *testing.T) {
	require.Empty(t, journal.Summarize(nil, journal.Daily, time.Now()))
}

func TestParsePeriod(t *testing.T) {
	p, err := journal.ParsePeriod("weekly")
	require.NoError(t, err)
	require.Equal(t, journal.Weekly, p)

	_, err = journal.ParsePeriod("yearly")
	require.Error(t, err)
}
