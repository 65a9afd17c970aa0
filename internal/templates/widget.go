package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// WidgetView is a widget ready for output. Content is trusted HTML.
type WidgetView struct {
	Key     string
	Type    string
	Class   string
	Content string
	Defer   bool
}

// Widget renders one widget. Deferred widgets render an empty placeholder
// that the client fills from the widget endpoint.
func Widget(v WidgetView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="widget widget-`, cssToken(v.Type))
		if v.Class != "" {
			h.raw(` `)
			h.text(v.Class)
		}
		h.raw(`" id="widget-`)
		h.text(v.Key)
		h.raw(`" data-key="`)
		h.text(v.Key)
		h.raw(`"`)
		if v.Defer {
			h.raw(` data-defer="true"></div>`)
			return h.err
		}
		h.raw(`>`, v.Content, `</div>`)
		return h.err
	})
}

// WidgetHolder wraps the widgets of one location.
func WidgetHolder(location string, widgets []WidgetView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="widgetholder widgetholder-`)
		h.text(location)
		h.raw(`">`)
		for _, v := range widgets {
			h.component(ctx, Widget(v))
		}
		h.raw(`</div>`)
		return h.err
	})
}
