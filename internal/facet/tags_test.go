package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"afisha/internal/config"
	"afisha/internal/model"
)

func defaultKeywords() KeywordTable {
	return KeywordTable(config.DefaultTagKeywords())
}

func TestKeywordTable_Classify(t *testing.T) {
	table := defaultKeywords()
	cases := map[string]string{
		"Rock":              CategoryLive,
		"Хард-рок":          CategoryLive,
		"Post-Punk":         CategoryLive,
		"Disco":             CategoryPop,
		"Hip-Hop":           CategoryPop,
		"Электроника":       CategoryPop,
		"Jazz":              CategoryClassic,
		"Singer-Songwriter": CategoryClassic,
		"Джаз":              CategoryClassic,
		"Стендап":           CategoryDefault,
		"":                  CategoryDefault,
	}
	for in, want := range cases {
		assert.Equal(t, want, table.Classify(in), "tag %q", in)
	}
}

func TestKeywordTable_FirstCategoryWins(t *testing.T) {
	assert.Equal(t, CategoryLive, defaultKeywords().Classify("pop-rock"))
}

func TestTagBadges(t *testing.T) {
	ev := model.Event{
		Tags:          []model.Tag{{Name: "Jazz"}, {Name: "Вечеринка"}, {Name: "Rock"}, {Name: "Folk"}},
		TagCategories: []string{"pop", "LIVE", "unknown"},
	}

	badges := TagBadges(ev, defaultKeywords())

	assert.Equal(t, []model.TagBadge{
		{Name: "Jazz", Category: CategoryPop, Class: "tag-pop"},
		{Name: "Вечеринка", Category: CategoryLive, Class: "tag-live"},
		{Name: "Rock", Category: CategoryLive, Class: "tag-live"},
		{Name: "Folk", Category: CategoryClassic, Class: "tag-classic"},
	}, badges)
}

func TestTagBadges_Empty(t *testing.T) {
	badges := TagBadges(model.Event{}, defaultKeywords())
	assert.NotNil(t, badges)
	assert.Empty(t, badges)
}

func TestCategoryClass(t *testing.T) {
	assert.Equal(t, "tag-default", CategoryClass("other"))
	assert.Equal(t, "tag-classic", CategoryClass(CategoryClassic))
}
