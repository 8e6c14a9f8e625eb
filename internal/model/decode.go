package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// rawObject is a decoded JSON object whose values are decoded lazily, one
// field at a time, so that a badly typed field never spoils its neighbours.
type rawObject map[string]json.RawMessage

// first returns the first present, non-null value among the given keys.
func (o rawObject) first(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		v, ok := o[k]
		if !ok || isNull(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func (o rawObject) str(keys ...string) string {
	v, ok := o.first(keys...)
	if !ok {
		return ""
	}
	return looseString(v)
}

// UnmarshalJSON decodes a loosely typed event record. It only fails when the
// record is not a JSON object; individual fields with unexpected shapes are
// left at their zero values.
func (e *Event) UnmarshalJSON(data []byte) error {
	var o rawObject
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}

	*e = Event{}
	e.ID = o.str("id")
	e.Slug = o.str("slug")
	e.Title = strings.TrimSpace(o.str("title"))
	e.Date = NormalizeDate(o.str("date"))
	e.Time = NormalizeClock(o.str("time"))

	if v, ok := o.first("place"); ok {
		e.Place = decodePlace(v)
	}

	if v, ok := o.first("tags"); ok {
		e.Tags = decodeTags(v)
	}
	if v, ok := o.first("tag_categories", "tagCategories"); ok {
		e.TagCategories = decodeStrings(v)
	}

	if v, ok := o.first("rating"); ok {
		e.Rating = ParseRating(looseString(v))
	}
	if v, ok := o.first("price"); ok {
		if p, ok := parseNumber(looseString(v)); ok {
			e.Price = &p
		}
	}
	e.Tickets = strings.TrimSpace(o.str("tickets", "ticket_url", "ticketUrl"))

	e.Images = decodeImages(o)

	e.IsNew = looseBool(o, "is_new", "isNew")
	e.IsCancelled = looseBool(o, "is_cancelled", "isCancelled")

	return nil
}

func decodePlace(v json.RawMessage) Place {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return Place{Name: strings.TrimSpace(s)}
	}

	var o rawObject
	if err := json.Unmarshal(v, &o); err != nil {
		return Place{}
	}
	return Place{
		Name:        strings.TrimSpace(o.str("name")),
		Title:       strings.TrimSpace(o.str("title")),
		Coordinates: o.str("coordinates", "coords"),
		MapLink:     o.str("map_link", "mapLink"),
		Images:      decodeImages(o),
	}
}

func decodeImages(o rawObject) ImageFields {
	f := ImageFields{
		Image:     o.str("image"),
		MainImage: o.str("main_image", "mainImage"),
		SmallPic:  o.str("small_pic", "smallPic"),
		Poster:    o.str("poster"),
		Photo:     o.str("photo"),
		Avatar:    o.str("avatar"),
		Thumbnail: o.str("thumbnail"),
		Cover:     o.str("cover"),
	}
	if v, ok := o.first("images"); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err == nil {
			for _, it := range items {
				if u := imageItemURL(it); u != "" {
					f.Images = append(f.Images, u)
				}
			}
		}
	}
	return f
}

// imageItemURL accepts either a plain URL string or an object carrying one.
func imageItemURL(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var o rawObject
	if err := json.Unmarshal(v, &o); err != nil {
		return ""
	}
	return o.str("url", "src", "image")
}

func decodeTags(v json.RawMessage) []Tag {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}
	tags := make([]Tag, 0, len(items))
	for _, it := range items {
		var name string
		if err := json.Unmarshal(it, &name); err != nil {
			var o rawObject
			if err := json.Unmarshal(it, &o); err != nil {
				continue
			}
			name = o.str("name", "title")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tags = append(tags, Tag{Name: name})
	}
	return tags
}

// decodeStrings keeps index alignment: entries that are not strings become "".
func decodeStrings(v json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}
	out := make([]string, len(items))
	for i, it := range items {
		if isNull(it) {
			continue
		}
		out[i] = strings.TrimSpace(looseString(it))
	}
	return out
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// looseString renders a JSON scalar as a string. Numbers keep their literal
// form; objects and arrays yield "".
func looseString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

func looseBool(o rawObject, keys ...string) bool {
	v, ok := o.first(keys...)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(looseString(v))) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseRating parses a rating value permissively. Anything that is not a
// finite number resolves to 0.
func ParseRating(s string) float64 {
	f, ok := parseNumber(s)
	if !ok {
		return 0
	}
	return f
}

// NormalizeDate returns the zero-padded ISO date of s when it starts with a
// year-month-day date, padded or not ("2024-06-01T19:00:00" -> "2024-06-01",
// "2020-1-5" -> "2020-01-05"). Other values are returned trimmed so that
// equality filters still see them.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	head := s
	if i := strings.IndexAny(head, "T "); i >= 0 {
		head = head[:i]
	}
	parts := strings.Split(head, "-")
	if len(parts) != 3 {
		return s
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return s
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return s
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil || d < 1 {
		return s
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return s
	}
	return t.Format(DateLayout)
}

// NormalizeClock turns "9:5", "19:00" or "19:00:00" into a zero-padded HH:MM.
// Values that do not look like a time of day yield "".
func NormalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return ""
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 || h > 23 {
		return ""
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 || m > 59 {
		return ""
	}
	return pad2(h) + ":" + pad2(m)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// DateLayout is the ISO calendar date layout used by the feed.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day layout used by the feed.
const ClockLayout = "15:04"
