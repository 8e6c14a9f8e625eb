package model

// Event represents a single show as published by the upstream feed, after
// loose JSON decoding (see decode.go). Every field is optional: a record with
// missing fields degrades per-field instead of being rejected.
//
// Events are treated as read-only once fetched; pipeline stages return new
// slices rather than mutating the input.
type Event struct {
	ID   string // opaque upstream identifier
	Slug string // used for the detail link

	Title string

	// Date is the calendar date in ISO form (YYYY-MM-DD) when the feed
	// provided one that parses; otherwise the raw trimmed value ("" if absent).
	Date string
	// Time is the normalized time-of-day (HH:MM) or "" when absent.
	Time string

	Place Place

	// Tags preserve source order; TagCategories[i] (if present) describes Tags[i].
	Tags          []Tag
	TagCategories []string

	// Rating is parsed permissively; non-numeric or absent values are 0.
	Rating float64
	// Price is nil when unknown. A zero price means free admission.
	Price *float64
	// Tickets is the purchase URL, passed through verbatim.
	Tickets string

	Images ImageFields

	IsNew       bool
	IsCancelled bool
}

// Place is the venue of an Event. A plain-string place in the feed decodes
// into Place{Name: s}.
type Place struct {
	Name  string
	Title string

	// Coordinates is the raw "lat,lng" string as published.
	Coordinates string
	MapLink     string

	Images ImageFields
}

// Tag is a single genre/category label attached to an Event.
type Tag struct {
	Name string
}

// ImageFields holds every URL-bearing image field an event or place may carry.
// Resolution order lives in internal/facet.
type ImageFields struct {
	Image     string
	MainImage string
	SmallPic  string
	Poster    string
	Photo     string
	Avatar    string
	Thumbnail string
	Cover     string
	Images    []string
}

// TagNames returns the tag names in source order.
func (e Event) TagNames() []string {
	out := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		out = append(out, t.Name)
	}
	return out
}

// TagCategory returns the category hint aligned with tag i, or "".
func (e Event) TagCategory(i int) string {
	if i < 0 || i >= len(e.TagCategories) {
		return ""
	}
	return e.TagCategories[i]
}

// HasPrice reports whether the feed published a price for this event.
func (e Event) HasPrice() bool {
	return e.Price != nil
}
