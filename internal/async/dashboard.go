package async

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"backoffice/internal/i18n"
	"backoffice/internal/logging"
	"backoffice/internal/readme"
	"backoffice/internal/services"
	"backoffice/internal/store"
	"backoffice/internal/templates"
)

const (
	activityLimit   = 8
	activityContext = "authentication"
)

// dashboardNews renders at most one alert and one information panel. Alerts
// are always shown; information can be switched off in the config.
func (h *Handler) dashboardNews(w http.ResponseWriter, r *http.Request) {
	loc := h.printer(r)
	sel, err := h.News.Fetch(r.Context(), requestHost(r))

	var parts []templ.Component
	if sel.Alert != nil {
		parts = append(parts, templates.NewsPanel(*sel.Alert))
	}
	if sel.Information != nil && !h.Config.News.Disabled {
		parts = append(parts, templates.NewsPanel(*sel.Information))
	}
	if err != nil {
		logging.WarnWithContext(r.Context(), h.logger, "dashboard news unavailable", "news_fetch",
			logging.Error(err),
			logging.String(logging.FieldImpact, "dashboard shows a connection notice instead of news"),
		)
		parts = append(parts, templates.UnableToConnect(loc, h.News.Source()))
	}
	h.writeHTML(w, r, cacheNews, templ.Join(parts...))
}

// latestActivity renders the latest content changes and logins.
func (h *Handler) latestActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	changes, err := h.Store.ChangeActivity(ctx, activityLimit)
	if err != nil {
		h.logger.WarnContext(ctx, "change activity unavailable", logging.Error(err))
		changes = nil
	}
	logins, err := h.Store.SystemActivity(ctx, store.SystemQuery{Limit: activityLimit, Context: activityContext})
	if err != nil {
		h.logger.WarnContext(ctx, "system activity unavailable", logging.Error(err))
		logins = nil
	}
	h.writeHTML(w, r, cacheNews, templates.LatestActivity(h.printer(r), changes, logins))
}

func (h *Handler) renderWidget(w http.ResponseWriter, r *http.Request) {
	c, err := h.Widgets.Render(r.PathValue("key"))
	if err != nil {
		h.logger.DebugContext(r.Context(), "widget lookup failed", logging.Error(err))
		status := services.HTTPStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.writeHTML(w, r, cacheWidget, c)
}

// widgetHolder renders every widget queued for a location and type. An
// unknown location renders an empty holder.
func (h *Handler) widgetHolder(w http.ResponseWriter, r *http.Request) {
	h.writeHTML(w, r, cacheWidget, h.Widgets.Holder(r.PathValue("location"), r.PathValue("type")))
}

func (h *Handler) readmeHTML(w http.ResponseWriter, r *http.Request) {
	html, err := h.Readme.Render(r.PathValue("filename"))
	if err != nil {
		loc := h.printer(r)
		msg := loc.Sprintf(i18n.KeyNotReadable)
		if errors.Is(err, readme.ErrNotAllowed) {
			msg = loc.Sprintf(i18n.KeyNotAllowed)
		}
		h.logger.InfoContext(r.Context(), "readme refused", logging.Error(err))
		http.Error(w, msg, http.StatusUnauthorized)
		return
	}
	h.writeHTML(w, r, cacheWidget, templ.Raw(html))
}
