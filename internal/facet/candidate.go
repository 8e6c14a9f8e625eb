package facet

import (
	"strings"

	"afisha/internal/model"
)

// FirstAcceptable walks candidates in order and returns the first one accepted
// by accept. It is the single fallback-chain evaluator behind image and
// place-name resolution.
func FirstAcceptable(candidates []string, accept func(string) bool) (string, bool) {
	for _, c := range candidates {
		if accept(c) {
			return c, true
		}
	}
	return "", false
}

// NonBlank accepts any string with non-space content.
func NonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// PlaceName resolves the display name of an event's venue, or "".
func PlaceName(ev model.Event) string {
	name, _ := FirstAcceptable([]string{ev.Place.Name, ev.Place.Title}, NonBlank)
	return strings.TrimSpace(name)
}
