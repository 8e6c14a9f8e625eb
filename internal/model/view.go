package model

import (
	"strings"
	"time"
)

// View identifies one of the interchangeable presentations of the working set.
type View string

const (
	ViewList     View = "list"
	ViewCalendar View = "calendar"
	ViewMap      View = "map"
)

// ParseView maps a user-supplied string to a View. Unknown values fall back
// to the list view, matching the presentation layer's default branch.
func ParseView(s string) View {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewCalendar:
		return ViewCalendar
	case ViewMap:
		return ViewMap
	default:
		return ViewList
	}
}

// UIState is the session-scoped state owned by the presentation layer. The
// pipeline is a pure function of (events, UIState).
type UIState struct {
	SearchQuery  string `json:"search_query"`
	SelectedDate string `json:"selected_date,omitempty"`
	ActiveView   View   `json:"active_view"`
	// VisibleMonth is always the first day of the displayed month.
	VisibleMonth time.Time `json:"visible_month"`
}

// NewUIState returns the initial state for a session started at now.
func NewUIState(now time.Time) UIState {
	return UIState{
		ActiveView:   ViewList,
		VisibleMonth: MonthStart(now),
	}
}

// WithSearch returns a copy with the search query normalized (lowercased,
// trimmed) the way the query engine expects it.
func (s UIState) WithSearch(q string) UIState {
	s.SearchQuery = NormalizeQuery(q)
	return s
}

// ToggleDate selects date, or clears the selection when date is already the
// selected one. Selecting "" clears as well.
func (s UIState) ToggleDate(date string) UIState {
	date = strings.TrimSpace(date)
	if date == "" || s.SelectedDate == date {
		s.SelectedDate = ""
		return s
	}
	s.SelectedDate = date
	return s
}

// WithView switches the active view.
func (s UIState) WithView(v View) UIState {
	s.ActiveView = v
	return s
}

// ShiftMonth moves the visible month by delta months.
func (s UIState) ShiftMonth(delta int) UIState {
	s.VisibleMonth = MonthStart(s.VisibleMonth).AddDate(0, delta, 0)
	return s
}

// MonthStart truncates t to midnight of the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NormalizeQuery lowercases and trims a free-text search query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Coordinates is a resolved map position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	// Source records how the point was obtained: "feed", "gazetteer" or
	// "synthesized".
	Source string `json:"source"`
}

// TagBadge is a single rendered tag with its display category.
type TagBadge struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Class    string `json:"class"`
}

// ViewModel is the flat, rendering-ready record handed to the presentation
// layer for each event of the working set.
type ViewModel struct {
	Title       string       `json:"title"`
	Date        string       `json:"date,omitempty"`
	Time        string       `json:"time,omitempty"`
	DateLabel   string       `json:"date_label"`
	PlaceName   string       `json:"place_name"`
	ImageURL    string       `json:"image_url"`
	TagBadges   []TagBadge   `json:"tag_badges"`
	PriceLabel  string       `json:"price_label,omitempty"`
	TicketURL   *string      `json:"ticket_url"`
	RatingBadge *string      `json:"rating_badge"`
	IsFeatured  bool         `json:"is_featured"`
	IsNew       bool         `json:"is_new"`
	IsCancelled bool         `json:"is_cancelled"`
	Coordinates *Coordinates `json:"coordinates"`
	DetailURL   string       `json:"detail_url"`
}
