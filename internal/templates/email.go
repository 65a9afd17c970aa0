package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"backoffice/internal/i18n"
)

// PingTest renders the body of the test email.
func PingTest(loc *message.Printer, siteName, user, ip string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
		h.msg(loc, i18n.KeyPingTitle)
		h.raw(`</title></head><body><h1>`)
		h.msg(loc, i18n.KeyPingTitle)
		h.raw(`</h1><p>`)
		h.msg(loc, i18n.KeyPingBody, siteName)
		h.raw(`</p><p>`)
		h.msg(loc, i18n.KeyPingRequester, user, ip)
		h.raw(`</p></body></html>`)
		return h.err
	})
}
