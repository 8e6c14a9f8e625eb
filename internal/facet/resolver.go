package facet

import (
	"net/url"
	"strings"
	"time"

	"afisha/internal/config"
	"afisha/internal/model"
)

// Resolver derives every display facet of an event from a fixed
// configuration. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	Images      ImageOptions
	Coordinates CoordinateOptions
	Keywords    KeywordTable
	PricePolicy PricePolicy
	// DetailBaseURL prefixes event detail links ({base}/{slug}).
	DetailBaseURL string
}

// NewResolver builds a Resolver from the application config.
func NewResolver(cfg *config.Config) *Resolver {
	gz := make(Gazetteer, 0, len(cfg.Gazetteer))
	for _, e := range cfg.Gazetteer {
		gz = append(gz, Venue{Name: e.Name, Lat: e.Lat, Lng: e.Lng})
	}

	policy := PriceAlways
	if cfg.PricePolicy == config.PricePolicyTicketOnly {
		policy = PriceTicketOnly
	}

	return &Resolver{
		Images: ImageOptions{
			Placeholder: cfg.PlaceholderImage,
			MediaHost:   cfg.MediaHost,
			Resize:      cfg.ImageResize,
		},
		Coordinates: CoordinateOptions{
			Gazetteer: gz,
			CenterLat: cfg.CityCenter.Lat,
			CenterLng: cfg.CityCenter.Lng,
		},
		Keywords:      KeywordTable(cfg.TagKeywords),
		PricePolicy:   policy,
		DetailBaseURL: cfg.DetailBaseURL,
	}
}

// DefaultResolver returns a Resolver over config.DefaultConfig().
func DefaultResolver() *Resolver {
	cfg := config.DefaultConfig()
	cfg.Normalize()
	return NewResolver(cfg)
}

// Title returns the event title or the untitled placeholder.
func Title(ev model.Event) string {
	if t := strings.TrimSpace(ev.Title); t != "" {
		return t
	}
	return UntitledTitle
}

// DetailURL builds the event detail link from slug (or id), or "#".
func (r *Resolver) DetailURL(ev model.Event) string {
	key, ok := FirstAcceptable([]string{ev.Slug, ev.ID}, NonBlank)
	if !ok || r.DetailBaseURL == "" {
		return "#"
	}
	return r.DetailBaseURL + "/" + url.PathEscape(strings.TrimSpace(key))
}

// Image resolves the event image URL.
func (r *Resolver) Image(ev model.Event) string {
	return ResolveImage(ev, r.Images)
}

// Coords resolves the event's map position, or nil when it has no place.
func (r *Resolver) Coords(ev model.Event) *model.Coordinates {
	return ResolveCoordinates(PlaceName(ev), ev.Place.Coordinates, r.Coordinates)
}

// PlaceCoords resolves a marker position for a place name alone.
func (r *Resolver) PlaceCoords(name string) *model.Coordinates {
	return ResolveCoordinates(name, "", r.Coordinates)
}

// ViewModel projects one event into its rendering-ready record.
func (r *Resolver) ViewModel(ev model.Event, now time.Time) model.ViewModel {
	return model.ViewModel{
		Title:       Title(ev),
		Date:        ev.Date,
		Time:        ev.Time,
		DateLabel:   DateLabel(ev.Date, ev.Time, now),
		PlaceName:   PlaceName(ev),
		ImageURL:    r.Image(ev),
		TagBadges:   TagBadges(ev, r.Keywords),
		PriceLabel:  PriceLabel(ev, r.PricePolicy),
		TicketURL:   TicketURL(ev),
		RatingBadge: RatingBadge(ev.Rating),
		IsFeatured:  IsFeatured(ev.Rating),
		IsNew:       ev.IsNew,
		IsCancelled: ev.IsCancelled,
		Coordinates: r.Coords(ev),
		DetailURL:   r.DetailURL(ev),
	}
}
