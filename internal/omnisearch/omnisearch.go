// Package omnisearch answers the back-end quick search box.
package omnisearch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/message"

	"backoffice/internal/contenttype"
	"backoffice/internal/i18n"
	"backoffice/internal/store"
)

// MinQueryLength is the shortest query that produces results.
const MinQueryLength = 3

// Result priorities; higher sorts first.
const (
	PriorityLandingPage = 9999
	PriorityContentType = 8000
	PriorityMenuItem    = 5000
	PriorityContent     = 2000
)

const maxContentResults = 20

// Option is a single search result.
type Option struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Priority    int    `json:"priority"`
}

// ContentSearcher finds records by title; store.Store satisfies it.
type ContentSearcher interface {
	SearchContent(ctx context.Context, term string, limit int) ([]store.Content, error)
}

// Searcher combines static navigation entries with matching records.
type Searcher struct {
	types   *contenttype.Registry
	content ContentSearcher
	base    string
}

// New constructs a Searcher. base is the path prefix of the back-end pages.
func New(types *contenttype.Registry, content ContentSearcher, base string) *Searcher {
	return &Searcher{types: types, content: content, base: "/" + strings.Trim(base, "/")}
}

// Query returns the options matching q, highest priority first and then by
// label. Queries shorter than MinQueryLength return nothing.
func (s *Searcher) Query(ctx context.Context, loc *message.Printer, q string) ([]Option, error) {
	q = strings.TrimSpace(q)
	if len(q) < MinQueryLength {
		return []Option{}, nil
	}
	needle := strings.ToLower(q)

	options := make([]Option, 0, 16)
	for _, opt := range s.static(loc) {
		if matches(needle, opt.Label, opt.Path) {
			options = append(options, opt)
		}
	}

	if s.content != nil {
		records, err := s.content.SearchContent(ctx, q, maxContentResults)
		if err != nil {
			return nil, fmt.Errorf("search content: %w", err)
		}
		for _, rec := range records {
			name := rec.ContentType
			if ct, ok := s.types.Get(rec.ContentType); ok {
				name = ct.SingularName
			}
			options = append(options, Option{
				Label:       rec.Title,
				Description: loc.Sprintf(i18n.KeyEditContent, name),
				Path:        fmt.Sprintf("%s/editcontent/%s/%d", s.base, rec.ContentType, rec.ID),
				Priority:    PriorityContent,
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Priority != options[j].Priority {
			return options[i].Priority > options[j].Priority
		}
		return options[i].Label < options[j].Label
	})
	return options, nil
}

func (s *Searcher) static(loc *message.Printer) []Option {
	options := []Option{
		{
			Label:       loc.Sprintf(i18n.KeyDashboard),
			Description: loc.Sprintf(i18n.KeyDashboard),
			Path:        s.base + "/",
			Priority:    PriorityLandingPage,
		},
		{
			Label:       loc.Sprintf(i18n.KeyFileManager),
			Description: loc.Sprintf(i18n.KeyFileManager),
			Path:        s.base + "/files",
			Priority:    PriorityMenuItem,
		},
	}
	for _, ct := range s.types.All() {
		options = append(options,
			Option{
				Label:       loc.Sprintf(i18n.KeyViewContent, ct.Name),
				Description: ct.Name,
				Path:        s.base + "/overview/" + ct.Slug,
				Priority:    PriorityContentType,
			},
			Option{
				Label:       loc.Sprintf(i18n.KeyNewContent, ct.SingularName),
				Description: ct.SingularName,
				Path:        s.base + "/editcontent/" + ct.Slug,
				Priority:    PriorityContentType,
			},
		)
	}
	return options
}

func matches(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
