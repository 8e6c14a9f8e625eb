package view

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"afisha/internal/facet"
	"afisha/internal/model"
)

// Day is a single cell of the calendar view.
type Day struct {
	Date      string `json:"date"`
	Day       int    `json:"day"`
	Weekday   string `json:"weekday"`
	HasEvents bool   `json:"has_events"`
	Count     int    `json:"count"`
	Selected  bool   `json:"selected"`
	IsToday   bool   `json:"is_today"`
}

// Month is the calendar view of one month.
type Month struct {
	Title string `json:"title"`
	Month string `json:"month"` // YYYY-MM
	Days  []Day  `json:"days"`
}

// Calendar builds the month grid for state.VisibleMonth. Event markers come
// from all retained events (not the search-filtered set), so the calendar
// keeps showing which days have concerts while a query is active.
func (p *Projector) Calendar(events []model.Event, state model.UIState, now time.Time) (Month, error) {
	first := model.MonthStart(state.VisibleMonth.In(now.Location()))
	last := first.AddDate(0, 1, -1)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: first,
		Until:   last,
	})
	if err != nil {
		return Month{}, fmt.Errorf("calendar: build day rule: %w", err)
	}

	counts := make(map[string]int, len(events))
	for _, ev := range events {
		if ev.Date != "" {
			counts[ev.Date]++
		}
	}
	today := now.Format(model.DateLayout)

	days := rule.All()
	out := Month{
		Title: facet.MonthTitle(first),
		Month: first.Format("2006-01"),
		Days:  make([]Day, 0, len(days)),
	}
	for _, d := range days {
		key := d.Format(model.DateLayout)
		out.Days = append(out.Days, Day{
			Date:      key,
			Day:       d.Day(),
			Weekday:   facet.WeekdayShort(d.Weekday()),
			HasEvents: counts[key] > 0,
			Count:     counts[key],
			Selected:  state.SelectedDate == key,
			IsToday:   key == today,
		})
	}
	return out, nil
}

// ParseMonth parses a YYYY-MM string into the first day of that month in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}
