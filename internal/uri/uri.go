// Package uri generates unique slugs for content records.
package uri

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"backoffice/internal/contenttype"
	"backoffice/internal/services"
	"backoffice/internal/textutil"
)

const (
	defaultSlugField = "slug"
	maxNumberedTries = 10
)

// SlugChecker reports whether a slug is already used; store.Store satisfies it.
type SlugChecker interface {
	SlugTaken(ctx context.Context, contentType, field, slug string, excludeID int64) (bool, error)
}

// Request describes the record a URI is generated for.
type Request struct {
	Title       string
	ID          int64
	ContentType string
	FullURI     bool
	SlugField   string
}

// Generator produces unique slugs.
type Generator struct {
	types  *contenttype.Registry
	slugs  SlugChecker
	random func() int
}

// NewGenerator constructs a Generator.
func NewGenerator(types *contenttype.Registry, slugs SlugChecker) *Generator {
	return &Generator{
		types:  types,
		slugs:  slugs,
		random: func() int { return rand.IntN(900000) + 100000 },
	}
}

// URI returns a slug for req that no other record of the content type uses.
// Numeric slugs are prefixed with the singular slug. With FullURI the result
// is "/singular_slug/slug".
func (g *Generator) URI(ctx context.Context, req Request) (string, error) {
	ct, ok := g.types.Get(req.ContentType)
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "uri", "generate", fmt.Sprintf("unknown content type %q", req.ContentType), nil)
	}

	slug := textutil.Slugify(req.Title, textutil.DefaultSlugLength)
	if textutil.IsNumeric(slug) {
		slug = ct.SingularSlug + "-" + slug
	}
	prefix := ""
	if req.FullURI {
		prefix = "/" + ct.SingularSlug + "/"
	}
	field := strings.TrimSpace(req.SlugField)
	if field == "" || !ct.HasField(field) {
		field = defaultSlugField
	}

	taken, err := g.slugs.SlugTaken(ctx, ct.Slug, field, slug, req.ID)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "uri", "check slug", slug, err)
	}
	if !taken {
		return prefix + slug, nil
	}
	for i := 1; i <= maxNumberedTries; i++ {
		candidate := slug + "-" + strconv.Itoa(i)
		taken, err := g.slugs.SlugTaken(ctx, ct.Slug, field, candidate, req.ID)
		if err != nil {
			return "", services.Wrap(services.ErrTransient, "uri", "check slug", candidate, err)
		}
		if !taken {
			return prefix + candidate, nil
		}
	}

	suffix := "-" + strconv.Itoa(g.random())
	if limit := textutil.DefaultSlugLength - len(suffix); len(slug) > limit {
		slug = strings.TrimRight(slug[:limit], "-")
	}
	return prefix + slug + suffix, nil
}
