package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClock(t *testing.T) {
	cases := map[string]string{
		"19:00":    "19:00",
		"9:5":      "09:05",
		"19:00:00": "19:00",
		" 7:30 ":   "07:30",
		"24:00":    "",
		"evening":  "",
		"":         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeClock(in), "input %q", in)
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2024-06-01", NormalizeDate("2024-06-01"))
	assert.Equal(t, "2024-06-01", NormalizeDate(" 2024-06-01T19:00:00+05:00"))
	assert.Equal(t, "01.06.2024", NormalizeDate("01.06.2024"))
	assert.Equal(t, "", NormalizeDate("  "))

	assert.Equal(t, "2020-01-05", NormalizeDate("2020-1-5"))
	assert.Equal(t, "2024-06-01", NormalizeDate("2024-6-1 19:00"))
	assert.Equal(t, "2024-02-30", NormalizeDate("2024-02-30"))
	assert.Equal(t, "24-06-01", NormalizeDate("24-06-01"))
}

func TestDecodeEvent_UnpaddedDate(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"title":"A","date":"2020-1-5"}`), &ev))
	assert.Equal(t, "2020-01-05", ev.Date)
}

func TestParseRating(t *testing.T) {
	assert.Equal(t, 4.5, ParseRating("4.5"))
	assert.Equal(t, 4.5, ParseRating("4,5"))
	assert.Zero(t, ParseRating("great"))
	assert.Zero(t, ParseRating(""))
	assert.Zero(t, ParseRating("NaN"))
}

func TestEvent_UnmarshalJSON_RatingAndPriceShapes(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"rating": 4.8, "price": "1 000"}`), &ev))
	assert.Equal(t, 4.8, ev.Rating)
	assert.Nil(t, ev.Price, "unparseable price is unknown, not free")

	require.NoError(t, json.Unmarshal([]byte(`{"rating": null, "price": null, "place": null}`), &ev))
	assert.Zero(t, ev.Rating)
	assert.Nil(t, ev.Price)
	assert.Equal(t, Place{}, ev.Place)
}

func TestEvent_UnmarshalJSON_WrongTypesDegrade(t *testing.T) {
	var ev Event
	body := `{"title": ["x"], "tags": "rock", "place": 12, "images": "https://x.test/a.jpg", "is_new": {"a": 1}}`
	require.NoError(t, json.Unmarshal([]byte(body), &ev))

	assert.Empty(t, ev.Title)
	assert.Empty(t, ev.Tags)
	assert.Equal(t, Place{}, ev.Place)
	assert.Empty(t, ev.Images.Images)
	assert.False(t, ev.IsNew)
}

func TestEvent_TagCategoryAlignment(t *testing.T) {
	ev := Event{Tags: []Tag{{Name: "a"}, {Name: "b"}}, TagCategories: []string{"live"}}
	assert.Equal(t, "live", ev.TagCategory(0))
	assert.Equal(t, "", ev.TagCategory(1))
	assert.Equal(t, "", ev.TagCategory(-1))
}

func TestUIState_Transitions(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	s := NewUIState(now)

	assert.Equal(t, ViewList, s.ActiveView)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), s.VisibleMonth)

	s = s.WithSearch("  JaZz ")
	assert.Equal(t, "jazz", s.SearchQuery)

	s = s.ToggleDate("2024-06-20")
	assert.Equal(t, "2024-06-20", s.SelectedDate)
	s = s.ToggleDate("2024-06-21")
	assert.Equal(t, "2024-06-21", s.SelectedDate)
	s = s.ToggleDate("2024-06-21")
	assert.Empty(t, s.SelectedDate)

	s = s.ShiftMonth(-6)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), s.VisibleMonth)

	s = s.WithView(ParseView("MAP"))
	assert.Equal(t, ViewMap, s.ActiveView)
	assert.Equal(t, ViewList, ParseView("table"))
}
