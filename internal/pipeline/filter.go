package pipeline

import (
	"time"

	"afisha/internal/model"
)

// endOfDayClock stands in for a missing time of day when deciding whether an
// event is still upcoming.
const endOfDayClock = "23:59"

// FilterFuture keeps events that have not yet passed, relative to the start
// of now's local day:
//
//   - no date: always kept
//   - date without time: treated as 23:59 that day
//   - kept when that moment is at or after today's midnight
//
// Dates that do not parse are kept; the record degrades instead of vanishing.
// The input slice is not modified.
func FilterFuture(events []model.Event, now time.Time) []model.Event {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Date == "" {
			out = append(out, ev)
			continue
		}

		at, ok := eventMoment(ev, loc)
		if !ok || !at.Before(today) {
			out = append(out, ev)
		}
	}
	return out
}

// eventMoment combines date and time (or end of day) in loc.
func eventMoment(ev model.Event, loc *time.Location) (time.Time, bool) {
	clock := ev.Time
	if clock == "" {
		clock = endOfDayClock
	}
	t, err := time.ParseInLocation(model.DateLayout+" "+model.ClockLayout, ev.Date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
