package pipeline

import (
	"strings"

	"afisha/internal/facet"
	"afisha/internal/model"
)

// Select applies the live search and date predicates to ranked events and
// returns the matching subsequence in the same order.
//
//   - query is matched case-insensitively (after trimming) as a substring of
//     the title, the resolved place name, or the space-joined tag names;
//     an empty query matches everything
//   - selectedDate, when non-empty, must equal the event date exactly
//
// Both predicates are ANDed. The result is always recomputed from scratch.
func Select(events []model.Event, query, selectedDate string) []model.Event {
	q := model.NormalizeQuery(query)
	selectedDate = strings.TrimSpace(selectedDate)

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if q != "" && !matchesQuery(ev, q) {
			continue
		}
		if selectedDate != "" && ev.Date != selectedDate {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// SelectState is Select driven by a UIState.
func SelectState(events []model.Event, state model.UIState) []model.Event {
	return Select(events, state.SearchQuery, state.SelectedDate)
}

func matchesQuery(ev model.Event, q string) bool {
	if strings.Contains(strings.ToLower(ev.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(facet.PlaceName(ev)), q) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(ev.TagNames(), " ")), q)
}
