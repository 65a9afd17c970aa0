package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"backoffice/internal/i18n"
)

// PathSegment is one crumb of the current folder path.
type PathSegment struct {
	Name string
	Path string
}

// EntryView is a file or folder in a listing.
type EntryView struct {
	Name  string
	Path  string
	Size  string
	Image bool
}

// BrowseView describes the folder shown by the async file browser.
type BrowseView struct {
	Namespace string
	Path      string
	Key       string
	Title     string
	Segments  []PathSegment
	Folders   []EntryView
	Files     []EntryView
	Error     string
}

// Browse renders a folder listing for the file picker.
func Browse(view BrowseView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="files-async" data-namespace="`)
		h.text(view.Namespace)
		h.raw(`" data-path="`)
		h.text(view.Path)
		h.raw(`" data-key="`)
		h.text(view.Key)
		h.raw(`"><h3>`)
		h.text(view.Title)
		h.raw(`</h3><ol class="breadcrumb"><li><a href="#" data-path="">`)
		h.text(view.Namespace)
		h.raw(`</a></li>`)
		for _, seg := range view.Segments {
			h.raw(`<li><a href="#" data-path="`)
			h.text(seg.Path)
			h.raw(`">`)
			h.text(seg.Name)
			h.raw(`</a></li>`)
		}
		h.raw(`</ol>`)
		if view.Error != "" {
			h.raw(`<p class="alert alert-danger">`)
			h.text(view.Error)
			h.raw(`</p>`)
		}
		if len(view.Folders) > 0 {
			h.raw(`<ul class="folders">`)
			for _, f := range view.Folders {
				h.raw(`<li><a href="#" data-path="`)
				h.text(f.Path)
				h.raw(`">`)
				h.text(f.Name)
				h.raw(`/</a></li>`)
			}
			h.raw(`</ul>`)
		}
		if len(view.Files) > 0 {
			h.raw(`<table class="files"><tbody>`)
			for _, f := range view.Files {
				class := "file"
				if f.Image {
					class = "file image"
				}
				h.raw(`<tr class="`, class, `" data-path="`)
				h.text(f.Path)
				h.raw(`"><td>`)
				h.text(f.Name)
				h.raw(`</td><td class="size">`)
				h.text(f.Size)
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// StackItemView is a stacked file.
type StackItemView struct {
	Type     string
	Basename string
	Path     string
}

// StackView describes the stack panel.
type StackView struct {
	Items     []StackItemView
	Option    string
	CanUpload bool
	FileTypes []string
	Namespace string
}

// Stack renders the user's stack. The "minimal" option emits only the item
// list; "list" adds the wrapper; "full" also adds the upload control.
func Stack(loc *message.Printer, view StackView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		if view.Option != "minimal" {
			h.raw(`<div class="stack stack-`, cssToken(view.Option), `">`)
		}
		if len(view.Items) == 0 {
			h.raw(`<p class="text-muted stack-empty">`)
			h.msg(loc, i18n.KeyStackEmpty)
			h.raw(`</p>`)
		} else {
			h.raw(`<ul class="stack-items">`)
			for _, item := range view.Items {
				h.raw(`<li class="stack-item stack-item-`, cssToken(item.Type), `" data-path="`)
				h.text(item.Path)
				h.raw(`" title="`)
				h.text(item.Path)
				h.raw(`">`)
				h.text(item.Basename)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
		if view.Option == "full" && view.CanUpload {
			accept := make([]string, len(view.FileTypes))
			for i, ext := range view.FileTypes {
				accept[i] = "." + ext
			}
			h.raw(`<div class="stack-upload" data-namespace="`)
			h.text(view.Namespace)
			h.raw(`"><label>`)
			h.msg(loc, i18n.KeyUpload)
			h.raw(` <input type="file" multiple accept="`)
			h.text(strings.Join(accept, ","))
			h.raw(`"></label></div>`)
		}
		if view.Option != "minimal" {
			h.raw(`</div>`)
		}
		return h.err
	})
}
