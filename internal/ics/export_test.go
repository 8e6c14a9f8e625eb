package ics

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/model"
)

func prop(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

func TestExport(t *testing.T) {
	loc := time.FixedZone("YEKT", 5*3600)
	price := 500.0
	events := []model.Event{
		{
			ID:      "42",
			Title:   "Rock fest",
			Date:    "2024-06-01",
			Time:    "19:00",
			Place:   model.Place{Name: "Клуб", Coordinates: "58.01,56.25"},
			Price:   &price,
			Tickets: "https://tickets.test/42",
		},
		{Title: "Day long", Date: "2024-06-02", IsCancelled: true},
		{Title: "No date"},
	}

	out := Export(events, Options{Location: loc, Now: time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)})

	cal, err := ical.ParseCalendar(bytes.NewReader(out))
	require.NoError(t, err)
	vevents := cal.Events()
	require.Len(t, vevents, 2)

	first := vevents[0]
	assert.Equal(t, "42@afisha", first.Id())
	assert.Equal(t, "Rock fest", prop(first, ical.ComponentPropertySummary))
	assert.Equal(t, "Клуб", prop(first, ical.ComponentPropertyLocation))
	assert.Equal(t, "https://permlive.ru/event/42", prop(first, ical.ComponentPropertyUrl))
	assert.Equal(t, "CONFIRMED", prop(first, ical.ComponentPropertyStatus))
	assert.NotEmpty(t, prop(first, ical.ComponentPropertyGeo))

	start, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 6, 1, 19, 0, 0, 0, loc)))
	end, err := first.GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, end.Sub(start))

	second := vevents[1]
	assert.Equal(t, "CANCELLED", prop(second, ical.ComponentPropertyStatus))
	assert.Equal(t, "20240602", prop(second, ical.ComponentPropertyDtStart))
	assert.Equal(t, EventUID(events[1]), second.Id())
}

func TestEventUID(t *testing.T) {
	a := model.Event{Title: "A", Date: "2024-06-01", Place: model.Place{Name: "Клуб"}}
	b := a
	b.Title = "B"

	assert.Equal(t, EventUID(a), EventUID(a))
	assert.NotEqual(t, EventUID(a), EventUID(b))
	assert.Equal(t, "slug-1@afisha", EventUID(model.Event{Slug: " slug-1 "}))
	assert.Equal(t, "7@afisha", EventUID(model.Event{ID: "7", Slug: "x"}))
}
