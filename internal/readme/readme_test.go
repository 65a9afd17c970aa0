package readme_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"backoffice/internal/readme"
	"backoffice/internal/services"
	"backoffice/internal/testsupport"
)

func TestRenderMarkdown(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "vendor", "acme", "gallery", "README.md"), "# Gallery\n\nA *fine* extension.\n")

	html, err := readme.New(dir).Render("acme/gallery/README.md")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<h1>Gallery</h1>") || !strings.Contains(html, "<em>fine</em>") {
		t.Fatalf("unexpected html: %s", html)
	}
}

func TestRenderRejectsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "vendor", "acme", "composer.json"), "{}")
	testsupport.WriteText(t, filepath.Join(dir, "readme.md"), "outside")
	r := readme.New(dir)

	for _, name := range []string{"acme/composer.json", "../readme.md", "../../etc/readme.md"} {
		_, err := r.Render(name)
		if !errors.Is(err, readme.ErrNotAllowed) {
			t.Fatalf("Render(%q): expected ErrNotAllowed, got %v", name, err)
		}
		if !errors.Is(err, services.ErrForbidden) {
			t.Fatalf("Render(%q): expected forbidden marker", name)
		}
	}
}

func TestRenderRejectsLinksOutOfVendor(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	testsupport.WriteText(t, filepath.Join(outside, "readme.md"), "# Private")
	testsupport.WriteText(t, filepath.Join(dir, "vendor", "acme", "gallery", "readme.md"), "# Gallery")
	if err := os.Symlink(filepath.Join(outside, "readme.md"), filepath.Join(dir, "vendor", "acme", "readme.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(dir, "vendor", "leak")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	r := readme.New(dir)

	for _, name := range []string{"acme/readme.md", "leak/readme.md"} {
		if _, err := r.Render(name); !errors.Is(err, readme.ErrNotAllowed) {
			t.Fatalf("Render(%q): expected ErrNotAllowed, got %v", name, err)
		}
	}
	if _, err := r.Render("acme/gallery/readme.md"); err != nil {
		t.Fatalf("Render inside vendor: %v", err)
	}
}

func TestRenderMissingIsNotReadable(t *testing.T) {
	dir := t.TempDir()
	if _, err := readme.New(dir).Render("acme/missing/readme.md"); !errors.Is(err, readme.ErrNotReadable) {
		t.Fatalf("expected ErrNotReadable, got %v", err)
	}
}

func TestRenderUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "vendor", "acme", "readme.md")
	testsupport.WriteText(t, path, "secret")
	if err := os.Chmod(path, 0o000); err != nil {
		t.Fatal(err)
	}
	if _, err := readme.New(dir).Render("acme/readme.md"); !errors.Is(err, readme.ErrNotReadable) {
		t.Fatalf("expected ErrNotReadable, got %v", err)
	}
}
