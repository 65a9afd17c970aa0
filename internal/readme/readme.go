// Package readme renders extension README files from the vendor directory.
package readme

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/sys/unix"

	"backoffice/internal/filestore"
	"backoffice/internal/services"
)

const allowedBasename = "readme.md"

var (
	// ErrNotAllowed is returned for anything other than a readme.md inside
	// the vendor directory.
	ErrNotAllowed = fmt.Errorf("%w: not allowed", services.ErrForbidden)
	// ErrNotReadable is returned when the file cannot be read.
	ErrNotReadable = fmt.Errorf("%w: not readable", services.ErrForbidden)
)

// Renderer converts README markdown to HTML.
type Renderer struct {
	vendorDir string
	md        goldmark.Markdown
}

// New returns a Renderer for extensionsDir/vendor.
func New(extensionsDir string) *Renderer {
	return &Renderer{
		vendorDir: filepath.Join(extensionsDir, "vendor"),
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render returns the HTML for the README at filename, relative to the vendor
// directory.
func (r *Renderer) Render(filename string) (string, error) {
	full := filepath.Join(r.vendorDir, filepath.FromSlash(filename))
	if strings.ToLower(filepath.Base(full)) != allowedBasename {
		return "", ErrNotAllowed
	}
	rel, err := filepath.Rel(r.vendorDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotAllowed
	}
	// A link inside vendor must not lead out of it.
	if err := filestore.Confined(r.vendorDir, full); err != nil {
		if errors.Is(err, filestore.ErrOutsideRoot) {
			return "", ErrNotAllowed
		}
		return "", ErrNotReadable
	}
	if err := unix.Access(full, unix.R_OK); err != nil {
		return "", ErrNotReadable
	}
	source, err := os.ReadFile(full)
	if err != nil {
		return "", ErrNotReadable
	}
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
