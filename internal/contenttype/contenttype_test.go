package contenttype_test

import (
	"path/filepath"
	"testing"

	"backoffice/internal/contenttype"
	"backoffice/internal/testsupport"
)

func TestParsePreservesOrderAndDerivesNames(t *testing.T) {
	reg, err := contenttype.Parse([]byte(testsupport.DefaultContentTypes + `
blog-posts:
    fields:
        title:
            type: text
        slug:
            type: slug
            uses: [title, subtitle]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 content types, got %d", len(all))
	}
	if all[0].Slug != "pages" || all[1].Slug != "entries" || all[2].Slug != "blog-posts" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[0].SingularSlug != "page" {
		t.Fatalf("expected singular slug derived from singular name, got %q", all[0].SingularSlug)
	}
	if all[1].Name != "Entries" || all[1].SingularSlug != "entry" {
		t.Fatalf("unexpected entries definition: %+v", all[1])
	}
	if all[2].Name != "Blog Posts" {
		t.Fatalf("expected title-cased name, got %q", all[2].Name)
	}
	slug := all[2].Field("slug")
	if slug == nil || len(slug.Uses) != 2 || slug.Uses[1] != "subtitle" {
		t.Fatalf("unexpected slug field: %+v", slug)
	}
	if uses := all[0].Field("slug").Uses; len(uses) != 1 || uses[0] != "title" {
		t.Fatalf("expected scalar uses to decode, got %v", uses)
	}
}

func TestGetResolvesSingularSlug(t *testing.T) {
	reg, err := contenttype.Parse([]byte(testsupport.DefaultContentTypes))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ct, ok := reg.Get("entry")
	if !ok || ct.Slug != "entries" {
		t.Fatalf("expected entries via singular slug, got %+v %v", ct, ok)
	}
	if !ct.HasField("permalink") || ct.HasField("body") {
		t.Fatal("unexpected field lookup result")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Fatal("expected unknown slug to be absent")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	reg, err := contenttype.Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.All()) != 0 {
		t.Fatal("expected empty registry")
	}
}

func TestParseRejectsNonMapping(t *testing.T) {
	if _, err := contenttype.Parse([]byte("- pages\n- entries\n")); err == nil {
		t.Fatal("expected error for list document")
	}
}
