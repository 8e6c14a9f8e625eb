// Package ics exports a working set as an iCalendar feed so it can be
// subscribed to from ordinary calendar clients.
package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"afisha/internal/facet"
	appLog "afisha/internal/log"
	"afisha/internal/model"
)

const (
	productID = "-//afisha//concerts//RU"
	// defaultDuration is assumed for timed events; the feed has no end time.
	defaultDuration = 2 * time.Hour
)

// Options configures Export.
type Options struct {
	Resolver *facet.Resolver
	Location *time.Location
	// Now stamps DTSTAMP on every VEVENT.
	Now time.Time
	// Name is published as X-WR-CALNAME when set.
	Name string
}

// Export serializes events as a VCALENDAR with one VEVENT per dated event.
// Events without a parseable date cannot be placed and are skipped.
func Export(events []model.Event, opts Options) []byte {
	if opts.Resolver == nil {
		opts.Resolver = facet.DefaultResolver()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(opts.Location.String())

	skipped := 0
	for _, ev := range events {
		if !addEvent(cal, ev, opts) {
			skipped++
		}
	}
	if skipped > 0 {
		appLog.Debug("ics export skipped undated events", "skipped", skipped)
	}

	return []byte(cal.Serialize())
}

func addEvent(cal *ical.Calendar, ev model.Event, opts Options) bool {
	day, err := time.ParseInLocation(model.DateLayout, ev.Date, opts.Location)
	if err != nil {
		return false
	}

	ve := cal.AddEvent(EventUID(ev))
	ve.SetDtStampTime(opts.Now.UTC())
	ve.SetSummary(facet.Title(ev))

	if clock, err := time.Parse(model.ClockLayout, ev.Time); err == nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, opts.Location)
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(defaultDuration))
	} else {
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}

	if place := facet.PlaceName(ev); place != "" {
		ve.SetLocation(place)
	}
	if link := opts.Resolver.DetailURL(ev); link != "#" {
		ve.SetURL(link)
	}
	if desc := description(ev, opts.Resolver); desc != "" {
		ve.SetDescription(desc)
	}
	if ev.IsCancelled {
		ve.SetStatus(ical.ObjectStatusCancelled)
	} else {
		ve.SetStatus(ical.ObjectStatusConfirmed)
	}
	if lat, lng, ok := facet.ParseCoordinates(ev.Place.Coordinates); ok {
		ve.SetGeo(lat, lng)
	}
	return true
}

// description joins the price label, tags and ticket link, one per line.
func description(ev model.Event, r *facet.Resolver) string {
	var lines []string
	if label := facet.PriceLabel(ev, r.PricePolicy); label != "" {
		lines = append(lines, label)
	}
	if names := ev.TagNames(); len(names) > 0 {
		lines = append(lines, strings.Join(names, ", "))
	}
	if t := facet.TicketURL(ev); t != nil {
		lines = append(lines, *t)
	}
	return strings.Join(lines, "\n")
}

// EventUID returns a stable UID: the feed id or slug when present, otherwise
// a name-based UUID over title, date and place so re-exports keep identity.
func EventUID(ev model.Event) string {
	if key, ok := facet.FirstAcceptable([]string{ev.ID, ev.Slug}, facet.NonBlank); ok {
		return strings.TrimSpace(key) + "@afisha"
	}
	name := strings.Join([]string{ev.Title, ev.Date, ev.Time, facet.PlaceName(ev)}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@afisha"
}
