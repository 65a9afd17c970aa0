package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"backoffice/internal/htmltext"
	"backoffice/internal/i18n"
	"backoffice/internal/news"
	"backoffice/internal/store"
)

// NewsPanel renders a single news item. The teaser is reduced to plain text.
func NewsPanel(item news.Item) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		kind := "information"
		if item.IsAlert() {
			kind = "alert"
		}
		h.raw(`<div class="panel panel-default panel-news panel-news-`, kind, `" data-news-id="`)
		h.text(item.ID)
		h.raw(`">`)
		h.raw(`<div class="panel-heading">`)
		h.text(item.Title)
		h.raw(`</div><div class="panel-body">`)
		if teaser := htmltext.ToText(item.Teaser); teaser != "" {
			h.raw(`<p>`)
			h.text(teaser)
			h.raw(`</p>`)
		}
		if item.Author != "" || item.DateChanged != "" {
			h.raw(`<p class="panel-news-meta">`)
			h.text(item.Author)
			if item.Author != "" && item.DateChanged != "" {
				h.raw(`, `)
			}
			h.text(item.DateChanged)
			h.raw(`</p>`)
		}
		if item.Link != "" {
			h.raw(`<a class="panel-news-link" href="`)
			h.url(item.Link)
			h.raw(`" target="_blank" rel="noopener">`)
			h.text(item.Link)
			h.raw(`</a>`)
		}
		h.raw(`</div></div>`)
		return h.err
	})
}

// UnableToConnect renders the inline error shown when the news source is down.
func UnableToConnect(loc *message.Printer, source string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<p>`)
		h.msg(loc, i18n.KeyUnableToConnect, source)
		h.raw(`</p>`)
		return h.err
	})
}

// ChangeList renders changelog entries under a heading.
func ChangeList(loc *message.Printer, heading string, entries []store.ChangeEntry) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="panel panel-default panel-changes"><div class="panel-heading">`)
		h.text(heading)
		h.raw(`</div>`)
		if len(entries) == 0 {
			h.raw(`<p class="text-muted">`)
			h.msg(loc, i18n.KeyNoChanges)
			h.raw(`</p></div>`)
			return h.err
		}
		h.raw(`<ul class="list-group">`)
		for _, e := range entries {
			h.raw(`<li class="list-group-item" data-content-id="`, itoa(e.ContentID), `">`)
			h.raw(`<span class="label mutation-`, cssToken(e.MutationType), `">`)
			h.text(e.MutationType)
			h.raw(`</span> <strong>`)
			h.text(e.Title)
			h.raw(`</strong> <span class="contenttype">`)
			h.text(e.ContentType)
			h.raw(` #`, itoa(e.ContentID), `</span>`)
			if e.OwnerName != "" {
				h.raw(` <span class="owner">`)
				h.text(e.OwnerName)
				h.raw(`</span>`)
			}
			if e.Comment != "" {
				h.raw(` <em class="comment">`)
				h.text(e.Comment)
				h.raw(`</em>`)
			}
			h.raw(` `)
			h.timestamp(e.Date)
			h.raw(`</li>`)
		}
		h.raw(`</ul></div>`)
		return h.err
	})
}

// SystemList renders system activity entries under a heading.
func SystemList(loc *message.Printer, heading string, entries []store.SystemEntry) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="panel panel-default panel-system"><div class="panel-heading">`)
		h.text(heading)
		h.raw(`</div>`)
		if len(entries) == 0 {
			h.raw(`<p class="text-muted">`)
			h.msg(loc, i18n.KeyNoActivity)
			h.raw(`</p></div>`)
			return h.err
		}
		h.raw(`<ul class="list-group">`)
		for _, e := range entries {
			h.raw(`<li class="list-group-item level-`, cssToken(e.Level), `">`)
			h.text(e.Message)
			if e.OwnerName != "" {
				h.raw(` <span class="owner">`)
				h.text(e.OwnerName)
				h.raw(`</span>`)
			}
			if e.IP != "" {
				h.raw(` <span class="ip">`)
				h.text(e.IP)
				h.raw(`</span>`)
			}
			h.raw(` `)
			h.timestamp(e.Date)
			h.raw(`</li>`)
		}
		h.raw(`</ul></div>`)
		return h.err
	})
}

// LatestActivity combines the change and login panels of the dashboard.
// Empty panels are left out.
func LatestActivity(loc *message.Printer, changes []store.ChangeEntry, logins []store.SystemEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		if len(changes) > 0 {
			h.component(ctx, ChangeList(loc, loc.Sprintf(i18n.KeyLatestChanges), changes))
		}
		if len(logins) > 0 {
			h.component(ctx, SystemList(loc, loc.Sprintf(i18n.KeyLatestLogins), logins))
		}
		return h.err
	})
}
