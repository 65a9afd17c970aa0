package api

import (
	"cmp"
	"slices"
	"time"

	"backoffice/internal/store"
)

// FromTags converts distinct taxonomy slugs to their API representation.
func FromTags(slugs []string) []Tag {
	out := make([]Tag, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, Tag{Slug: slug})
	}
	return out
}

// FromTagCounts converts counted taxonomy slugs, preserving their order.
func FromTagCounts(counts []store.TagCount) []PopularTag {
	out := make([]PopularTag, 0, len(counts))
	for _, c := range counts {
		out = append(out, PopularTag{Slug: c.Slug, Count: c.Count})
	}
	return out
}

// SortRoutes orders routes by path, then method.
func SortRoutes(routes []Route) {
	slices.SortFunc(routes, func(a, b Route) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(a.Method, b.Method)
	})
}

// FormatTime renders t for API payloads; the zero time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
