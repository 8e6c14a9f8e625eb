package facet

import (
	"strings"

	"afisha/internal/model"
)

// Tag categories with a dedicated color class.
const (
	CategoryLive    = "live"
	CategoryPop     = "pop"
	CategoryClassic = "classic"
	CategoryDefault = "default"
)

// categoryOrder fixes the precedence of keyword matches: a tag such as
// "pop-rock" is classified by the first category that claims it.
var categoryOrder = []string{CategoryLive, CategoryPop, CategoryClassic}

// CategoryClass maps a category to its display class.
func CategoryClass(category string) string {
	switch category {
	case CategoryLive, CategoryPop, CategoryClassic:
		return "tag-" + category
	default:
		return "tag-" + CategoryDefault
	}
}

// KeywordTable is a declarative category -> keywords table. Keywords are
// matched case-insensitively as substrings of the tag name.
type KeywordTable map[string][]string

// Classify returns the category of a tag name, or CategoryDefault.
func (t KeywordTable) Classify(name string) string {
	lower := strings.ToLower(name)
	for _, cat := range categoryOrder {
		for _, kw := range t[cat] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return CategoryDefault
}

func knownCategory(c string) (string, bool) {
	c = strings.ToLower(strings.TrimSpace(c))
	switch c {
	case CategoryLive, CategoryPop, CategoryClassic:
		return c, true
	default:
		return "", false
	}
}

// TagBadges renders every tag of ev in source order. The aligned
// TagCategories entry wins when it names a known category; otherwise the
// keyword table decides.
func TagBadges(ev model.Event, table KeywordTable) []model.TagBadge {
	badges := make([]model.TagBadge, 0, len(ev.Tags))
	for i, tag := range ev.Tags {
		cat, ok := knownCategory(ev.TagCategory(i))
		if !ok {
			cat = table.Classify(tag.Name)
		}
		badges = append(badges, model.TagBadge{
			Name:     tag.Name,
			Category: cat,
			Class:    CategoryClass(cat),
		})
	}
	return badges
}
