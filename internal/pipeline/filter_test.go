package pipeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/model"
)

func titles(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Title)
	}
	return out
}

func TestFilterFuture(t *testing.T) {
	loc := time.FixedZone("YEKT", 5*60*60)
	now := time.Date(2024, 6, 1, 21, 30, 0, 0, loc)

	events := []model.Event{
		{Title: "no date"},
		{Title: "yesterday", Date: "2024-05-31", Time: "23:59"},
		{Title: "yesterday no time", Date: "2024-05-31"},
		{Title: "today earlier", Date: "2024-06-01", Time: "10:00"},
		{Title: "today no time", Date: "2024-06-01"},
		{Title: "tomorrow", Date: "2024-06-02", Time: "00:00"},
		{Title: "garbage date", Date: "soon"},
		{Title: "last year", Date: "2023-12-31", Time: "20:00"},
	}

	got := FilterFuture(events, now)

	assert.Equal(t, []string{
		"no date",
		"today earlier",
		"today no time",
		"tomorrow",
		"garbage date",
	}, titles(got))
}

func TestFilterFuture_DoesNotMutateInput(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []model.Event{
		{Title: "past", Date: "2024-01-01"},
		{Title: "future", Date: "2024-07-01"},
	}

	_ = FilterFuture(events, now)

	assert.Equal(t, "past", events[0].Title)
	assert.Equal(t, "future", events[1].Title)
}

func TestFilterFuture_UsesNowLocation(t *testing.T) {
	// 2024-06-01 02:00 in UTC+5 is still 2024-05-31 in UTC.
	loc := time.FixedZone("YEKT", 5*60*60)
	now := time.Date(2024, 6, 1, 2, 0, 0, 0, loc)

	got := FilterFuture([]model.Event{{Title: "yesterday local", Date: "2024-05-31"}}, now)
	assert.Empty(t, got)

	got = FilterFuture([]model.Event{{Title: "yesterday local", Date: "2024-05-31"}}, now.UTC())
	assert.Len(t, got, 1)
}

func TestPrepare_DropsPastUnpaddedDates(t *testing.T) {
	var events []model.Event
	require.NoError(t, json.Unmarshal([]byte(`[
		{"title": "old", "date": "2020-1-5"},
		{"title": "soon", "date": "2024-6-2"}
	]`), &events))

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got := Prepare(events, now)
	assert.Equal(t, []string{"soon"}, titles(got))
	assert.Equal(t, "2024-06-02", got[0].Date)
}
