package facet

import (
	"net/url"
	"strings"

	"afisha/internal/model"
)

// stubImageMarkers are substrings of known placeholder / camera-stub images
// that upstream services return instead of a real picture.
var stubImageMarkers = []string{
	"camera_50.png",
	"camera_100.png",
	"camera_200.png",
	"camera_400.png",
	"deactivated_",
	"no_photo",
	"nophoto",
	"placeholder",
}

// IsValidImageURL reports whether u is usable as an event image.
func IsValidImageURL(u string) bool {
	u = strings.TrimSpace(u)
	if u == "" {
		return false
	}
	lower := strings.ToLower(u)
	for _, m := range stubImageMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "//")
}

// imageCandidates flattens an ImageFields set in resolution priority order.
func imageCandidates(f model.ImageFields) []string {
	out := []string{
		f.Image,
		f.MainImage,
		f.SmallPic,
		f.Poster,
		f.Photo,
		f.Avatar,
		f.Thumbnail,
		f.Cover,
	}
	return append(out, f.Images...)
}

// ImageCandidates returns every image URL candidate of an event: the event's
// own fields first, then the place's.
func ImageCandidates(ev model.Event) []string {
	out := imageCandidates(ev.Images)
	return append(out, imageCandidates(ev.Place.Images)...)
}

// ImageOptions controls placeholder fallback and media host thumbnailing.
type ImageOptions struct {
	Placeholder string
	// MediaHost is matched against the URL host (exact or subdomain).
	MediaHost string
	// Resize is a query string (without "?") appended to media host URLs.
	Resize string
}

// ResolveImage picks the first valid image URL for ev, or the placeholder.
func ResolveImage(ev model.Event, opts ImageOptions) string {
	u, ok := FirstAcceptable(ImageCandidates(ev), IsValidImageURL)
	if !ok {
		return opts.Placeholder
	}
	return thumbnail(strings.TrimSpace(u), opts)
}

// thumbnail rewrites URLs on the media host: any existing query string is
// dropped and the fixed resize parameters are appended.
func thumbnail(u string, opts ImageOptions) string {
	if opts.MediaHost == "" || opts.Resize == "" {
		return u
	}
	raw := u
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return u
	}
	host := strings.ToLower(parsed.Hostname())
	mediaHost := strings.ToLower(opts.MediaHost)
	if host != mediaHost && !strings.HasSuffix(host, "."+mediaHost) {
		return u
	}

	base := u
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	return base + "?" + opts.Resize
}
