// Package pipeline holds the pure, synchronous stages that turn fetched
// events into the working set: temporal filtering, ranking and the live
// query predicates.
package pipeline

import (
	"time"

	"afisha/internal/model"
)

// Prepare runs the load-time stages on a freshly fetched feed: temporal
// filtering against now, then ranking.
func Prepare(events []model.Event, now time.Time) []model.Event {
	return Sort(FilterFuture(events, now))
}
