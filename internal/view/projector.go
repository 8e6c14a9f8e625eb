package view

import (
	"time"

	"afisha/internal/facet"
	"afisha/internal/model"
)

// Options configures a Projector.
type Options struct {
	// MapTodayOnly restricts map markers to events dated today.
	MapTodayOnly bool
}

// Projector turns a working set into rendering-ready records for the list,
// calendar and map views. It is the boundary to the presentation layer and
// makes no assumption about the rendering technology.
type Projector struct {
	resolver *facet.Resolver
	opts     Options
}

// NewProjector creates a Projector. A nil resolver uses facet.DefaultResolver.
func NewProjector(resolver *facet.Resolver, opts Options) *Projector {
	if resolver == nil {
		resolver = facet.DefaultResolver()
	}
	return &Projector{resolver: resolver, opts: opts}
}

// Resolver returns the facet resolver used by the projector.
func (p *Projector) Resolver() *facet.Resolver {
	return p.resolver
}

// Project builds one view-model per event, preserving order.
func (p *Projector) Project(events []model.Event, now time.Time) []model.ViewModel {
	out := make([]model.ViewModel, 0, len(events))
	for _, ev := range events {
		out = append(out, p.resolver.ViewModel(ev, now))
	}
	return out
}

// Title renders the list header for the current state: the selected date
// wins over the search query.
//
//	"Все концерты" | "Концерты 1 июня" | `Поиск: "jazz"`
func Title(state model.UIState, loc *time.Location) string {
	if state.SelectedDate != "" {
		if d, err := time.ParseInLocation(model.DateLayout, state.SelectedDate, loc); err == nil {
			return "Концерты " + facet.DayMonth(d)
		}
		return "Концерты " + state.SelectedDate
	}
	if state.SearchQuery != "" {
		return `Поиск: "` + state.SearchQuery + `"`
	}
	return "Все концерты"
}

// EmptyMessage returns the title/subtitle pair shown for an empty working
// set, distinguishing "nothing matches" from "nothing scheduled".
func EmptyMessage(state model.UIState) (title, subtitle string) {
	if state.SearchQuery != "" || state.SelectedDate != "" {
		return "Ничего не найдено", "Попробуйте изменить параметры поиска"
	}
	return "Нет концертов", "Концерты не найдены"
}
