package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedTags = []language.Tag{
	language.English,
	language.Dutch,
}

var tagMatcher = language.NewMatcher(supportedTags)

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// Printer returns a message printer for the supplied tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ParseLocale matches a configured locale such as "nl_NL" against the
// supported languages, falling back to Default.
func ParseLocale(locale string) language.Tag {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return Default()
	}
	parsed, err := language.Parse(locale)
	if err != nil {
		return Default()
	}
	matched, _, confidence := tagMatcher.Match(parsed)
	if confidence == language.No {
		return Default()
	}
	base, _ := matched.Base()
	return language.Make(base.String())
}

// ResolveTag picks the language for a request from Accept-Language, using
// fallback when the header is absent or unsupported.
func ResolveTag(r *http.Request, fallback language.Tag) language.Tag {
	if r == nil {
		return fallback
	}
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if accept == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	matched, _, confidence := tagMatcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	base, _ := matched.Base()
	return language.Make(base.String())
}
