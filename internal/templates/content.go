package templates

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"backoffice/internal/i18n"
	"backoffice/internal/store"
)

// RecordView is a content record as shown in listings.
type RecordView struct {
	ID      int64
	Title   string
	Link    string
	Status  string
	Changed time.Time
}

// RecordGroup is a titled list of records.
type RecordGroup struct {
	ContentType string
	Name        string
	Records     []RecordView
}

// LastModified renders the recently edited records of one content type.
func LastModified(loc *message.Printer, typeName string, records []RecordView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="panel panel-default panel-lastmodified"><div class="panel-heading">`)
		h.msg(loc, i18n.KeyRecentlyEdited, typeName)
		h.raw(`</div>`)
		if len(records) == 0 {
			h.raw(`<p class="text-muted">`)
			h.msg(loc, i18n.KeyNoRecords, typeName)
			h.raw(`</p></div>`)
			return h.err
		}
		h.raw(`<ul class="list-group">`)
		for _, r := range records {
			h.raw(`<li class="list-group-item status-`, cssToken(r.Status), `"><a href="`)
			h.url(r.Link)
			h.raw(`">`)
			h.text(r.Title)
			h.raw(`</a> `)
			h.timestamp(r.Changed)
			h.raw(`</li>`)
		}
		h.raw(`</ul></div>`)
		return h.err
	})
}

// FileBrowser renders published records grouped by content type, for
// picking a link target in the editor.
func FileBrowser(groups []RecordGroup) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="filebrowser">`)
		for _, g := range groups {
			if len(g.Records) == 0 {
				continue
			}
			h.raw(`<h4 data-contenttype="`)
			h.text(g.ContentType)
			h.raw(`">`)
			h.text(g.Name)
			h.raw(`</h4><ul>`)
			for _, r := range g.Records {
				h.raw(`<li><a href="#" data-id="`, itoa(r.ID), `" data-link="`)
				h.url(r.Link)
				h.raw(`">`)
				h.text(r.Title)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// LastModifiedChanges renders the changelog variant of the last-modified
// panel, used when change logging is enabled.
func LastModifiedChanges(loc *message.Printer, typeName string, entries []store.ChangeEntry) templ.Component {
	return ChangeList(loc, loc.Sprintf(i18n.KeyRecentlyEdited, typeName), entries)
}

// ChangeRecord renders the changelog box shown while editing a record.
func ChangeRecord(loc *message.Printer, entries []store.ChangeEntry) templ.Component {
	return ChangeList(loc, loc.Sprintf(i18n.KeyChangelog), entries)
}
