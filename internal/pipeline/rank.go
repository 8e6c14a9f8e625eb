package pipeline

import (
	"sort"
	"time"

	"afisha/internal/model"
)

// Sort returns a new slice ordered by:
//
//  1. date ascending (ISO strings compare chronologically; missing dates first)
//  2. rating descending
//  3. start timestamp ascending, where a missing time counts as 0
//
// Rating is compared before time of day, so a higher-rated event is listed
// above a lower-rated one on the same date even if it starts later. The sort
// is stable: equal keys keep their input order.
func Sort(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func less(a, b model.Event) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return startTimestamp(a) < startTimestamp(b)
}

// startTimestamp is the event start in Unix milliseconds (UTC wall clock), or
// 0 when date or time is missing or unparseable.
func startTimestamp(ev model.Event) int64 {
	if ev.Date == "" || ev.Time == "" {
		return 0
	}
	t, err := time.Parse(model.DateLayout+" "+model.ClockLayout, ev.Date+" "+ev.Time)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
