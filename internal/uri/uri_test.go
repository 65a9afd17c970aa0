package uri

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"backoffice/internal/contenttype"
	"backoffice/internal/services"
	"backoffice/internal/store"
	"backoffice/internal/testsupport"
)

type fakeSlugs struct {
	taken  map[string]bool
	fields []string
}

func (f *fakeSlugs) SlugTaken(_ context.Context, _ string, field, slug string, _ int64) (bool, error) {
	f.fields = append(f.fields, field)
	return f.taken[slug], nil
}

func newTestGenerator(t *testing.T, slugs SlugChecker) *Generator {
	t.Helper()
	reg, err := contenttype.Parse([]byte(testsupport.DefaultContentTypes))
	if err != nil {
		t.Fatalf("parse content types: %v", err)
	}
	g := NewGenerator(reg, slugs)
	g.random = func() int { return 424242 }
	return g
}

func TestURIBasicAndFull(t *testing.T) {
	g := newTestGenerator(t, &fakeSlugs{})
	ctx := context.Background()

	got, err := g.URI(ctx, Request{Title: "Hello, Wörld!", ContentType: "pages"})
	if err != nil || got != "hello-world" {
		t.Fatalf("got %q err=%v", got, err)
	}
	got, err = g.URI(ctx, Request{Title: "Hello", ContentType: "page", FullURI: true})
	if err != nil || got != "/page/hello" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestURINumericTitleGetsPrefix(t *testing.T) {
	g := newTestGenerator(t, &fakeSlugs{})
	got, err := g.URI(context.Background(), Request{Title: "2024", ContentType: "entries"})
	if err != nil || got != "entry-2024" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestURIUnknownSlugFieldFallsBack(t *testing.T) {
	slugs := &fakeSlugs{}
	g := newTestGenerator(t, slugs)
	ctx := context.Background()
	if _, err := g.URI(ctx, Request{Title: "x", ContentType: "entries", SlugField: "nonexistent"}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.URI(ctx, Request{Title: "x", ContentType: "entries", SlugField: "permalink"}); err != nil {
		t.Fatal(err)
	}
	if slugs.fields[0] != "slug" || slugs.fields[1] != "permalink" {
		t.Fatalf("unexpected fields checked: %v", slugs.fields)
	}
}

func TestURINumberedAndRandomSuffix(t *testing.T) {
	taken := map[string]bool{"about": true, "about-1": true, "about-2": true}
	g := newTestGenerator(t, &fakeSlugs{taken: taken})
	ctx := context.Background()

	got, err := g.URI(ctx, Request{Title: "About", ContentType: "pages"})
	if err != nil || got != "about-3" {
		t.Fatalf("got %q err=%v", got, err)
	}

	for i := 3; i <= maxNumberedTries; i++ {
		taken["about-"+strconv.Itoa(i)] = true
	}
	got, err = g.URI(ctx, Request{Title: "About", ContentType: "pages"})
	if err != nil || got != "about-424242" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestURIRandomSuffixKeepsLengthLimit(t *testing.T) {
	long := strings.Repeat("a", 200)
	g := newTestGenerator(t, &fakeSlugs{taken: map[string]bool{}})
	g.slugs = alwaysTaken{}
	got, err := g.URI(context.Background(), Request{Title: long, ContentType: "pages"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 128 || !strings.HasSuffix(got, "-424242") {
		t.Fatalf("unexpected slug %q (%d)", got, len(got))
	}
}

func TestURIUnknownContentType(t *testing.T) {
	g := newTestGenerator(t, &fakeSlugs{})
	if _, err := g.URI(context.Background(), Request{Title: "x", ContentType: "nope"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestURIExcludesOwnRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	id := testsupport.SeedContent(t, st, store.Content{ContentType: "pages", Slug: "contact", Title: "Contact", Status: store.StatusPublished})
	g := newTestGenerator(t, st)
	ctx := context.Background()

	got, err := g.URI(ctx, Request{Title: "Contact", ContentType: "pages", ID: id})
	if err != nil || got != "contact" {
		t.Fatalf("own record should not conflict: %q err=%v", got, err)
	}
	got, err = g.URI(ctx, Request{Title: "Contact", ContentType: "pages"})
	if err != nil || got != "contact-1" {
		t.Fatalf("expected numbered slug, got %q err=%v", got, err)
	}
}

type alwaysTaken struct{}

func (alwaysTaken) SlugTaken(context.Context, string, string, string, int64) (bool, error) {
	return true, nil
}
