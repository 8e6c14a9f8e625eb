package facet

import (
	"math"
	"strconv"
	"strings"

	"afisha/internal/model"
)

// Coordinate sources reported in model.Coordinates.Source.
const (
	SourceFeed        = "feed"
	SourceGazetteer   = "gazetteer"
	SourceSynthesized = "synthesized"
)

// Spread of synthesized points around the city centre (full width).
const (
	synthLatSpread = 0.02
	synthLngSpread = 0.04
)

// Venue is a gazetteer entry.
type Venue struct {
	Name string
	Lat  float64
	Lng  float64
}

// Gazetteer is an ordered venue table. Order decides substring matches.
type Gazetteer []Venue

// Lookup finds a venue for name: an exact (case-insensitive) name match
// first, then the first entry whose name is a substring of name.
func (g Gazetteer) Lookup(name string) (Venue, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return Venue{}, false
	}
	for _, v := range g {
		if strings.ToLower(strings.TrimSpace(v.Name)) == lower {
			return v, true
		}
	}
	for _, v := range g {
		key := strings.ToLower(strings.TrimSpace(v.Name))
		if key != "" && strings.Contains(lower, key) {
			return v, true
		}
	}
	return Venue{}, false
}

// ParseCoordinates parses a "lat,lng" string, tolerating whitespace, and
// rounds both components to six decimals.
func ParseCoordinates(s string) (lat, lng float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return 0, 0, false
	}
	return round6(lat), round6(lng), true
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

// NameHash is a polynomial rolling hash (base 31, modulo 2^32) over the
// Unicode code points of s.
func NameHash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	return h
}

// SynthesizeCoordinates derives a stable pseudo-random point near centre
// from the place name. The same name always yields the same point, so events
// at one unresolved venue still cluster together.
func SynthesizeCoordinates(name string, centerLat, centerLng float64) (lat, lng float64) {
	h := NameHash(strings.TrimSpace(name))
	latFrac := float64(h&0xFFFF)/0xFFFF - 0.5
	lngFrac := float64(h>>16)/0xFFFF - 0.5
	return round6(centerLat + latFrac*synthLatSpread), round6(centerLng + lngFrac*synthLngSpread)
}

// CoordinateOptions carries the gazetteer and synthesis anchor.
type CoordinateOptions struct {
	Gazetteer Gazetteer
	CenterLat float64
	CenterLng float64
}

// ResolveCoordinates resolves a map position for a place name and optional
// raw "lat,lng" string: parsed coordinates, then gazetteer, then synthesis.
// It returns nil only when there is neither a coordinate string nor a name.
func ResolveCoordinates(name, raw string, opts CoordinateOptions) *model.Coordinates {
	if lat, lng, ok := ParseCoordinates(raw); ok {
		return &model.Coordinates{Lat: lat, Lng: lng, Source: SourceFeed}
	}
	if strings.TrimSpace(name) == "" {
		return nil
	}
	if v, ok := opts.Gazetteer.Lookup(name); ok {
		return &model.Coordinates{Lat: v.Lat, Lng: v.Lng, Source: SourceGazetteer}
	}
	lat, lng := SynthesizeCoordinates(name, opts.CenterLat, opts.CenterLng)
	return &model.Coordinates{Lat: lat, Lng: lng, Source: SourceSynthesized}
}
