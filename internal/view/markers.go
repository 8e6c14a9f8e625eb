package view

import (
	"strconv"
	"time"

	"afisha/internal/facet"
	"afisha/internal/model"
)

// markerPreviewLimit caps the events listed inside one marker balloon.
const markerPreviewLimit = 5

// Marker is one map placemark: all events of the working set at one place.
type Marker struct {
	PlaceName   string            `json:"place_name"`
	Coordinates model.Coordinates `json:"coordinates"`
	Count       int               `json:"count"`
	CountLabel  string            `json:"count_label"`
	Events      []model.ViewModel `json:"events"`
	MoreLabel   string            `json:"more_label,omitempty"`
}

// Markers groups the working set by place name, one marker per place in
// first-appearance order. With MapTodayOnly, only today's events are placed.
func (p *Projector) Markers(events []model.Event, now time.Time) []Marker {
	today := now.Format(model.DateLayout)

	type group struct {
		name   string
		events []model.Event
	}
	var order []*group
	byName := make(map[string]*group)

	for _, ev := range events {
		if p.opts.MapTodayOnly && ev.Date != today {
			continue
		}
		name := facet.PlaceName(ev)
		if name == "" {
			name = facet.UnknownPlaceName
		}
		g, ok := byName[name]
		if !ok {
			g = &group{name: name}
			byName[name] = g
			order = append(order, g)
		}
		g.events = append(g.events, ev)
	}

	markers := make([]Marker, 0, len(order))
	for _, g := range order {
		coords := p.markerCoords(g.name, g.events)

		preview := g.events
		if len(preview) > markerPreviewLimit {
			preview = preview[:markerPreviewLimit]
		}
		m := Marker{
			PlaceName:   g.name,
			Coordinates: coords,
			Count:       len(g.events),
			CountLabel:  ConcertCount(len(g.events)),
			Events:      p.Project(preview, now),
		}
		if rest := len(g.events) - len(preview); rest > 0 {
			m.MoreLabel = "и ещё " + ConcertCount(rest)
		}
		markers = append(markers, m)
	}
	return markers
}

// markerCoords prefers coordinates published by the first event that carries
// them; otherwise the place name is resolved through the gazetteer/hash chain.
func (p *Projector) markerCoords(name string, events []model.Event) model.Coordinates {
	for _, ev := range events {
		if lat, lng, ok := facet.ParseCoordinates(ev.Place.Coordinates); ok {
			return model.Coordinates{Lat: lat, Lng: lng, Source: facet.SourceFeed}
		}
	}
	return *p.resolver.PlaceCoords(name)
}

// ConcertCount renders n with the Russian plural of "концерт":
// 1 концерт, 3 концерта, 7 концертов, 21 концерт, 12 концертов.
func ConcertCount(n int) string {
	return strconv.Itoa(n) + " " + pluralRu(n, "концерт", "концерта", "концертов")
}

func pluralRu(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	mod100 := n % 100
	mod10 := n % 10
	switch {
	case mod100 >= 11 && mod100 <= 14:
		return many
	case mod10 == 1:
		return one
	case mod10 >= 2 && mod10 <= 4:
		return few
	default:
		return many
	}
}
