package async

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/time/rate"

	"backoffice/internal/api"
	"backoffice/internal/config"
	"backoffice/internal/contenttype"
	"backoffice/internal/filestore"
	"backoffice/internal/i18n"
	"backoffice/internal/logging"
	"backoffice/internal/mailer"
	"backoffice/internal/news"
	"backoffice/internal/omnisearch"
	"backoffice/internal/readme"
	"backoffice/internal/session"
	"backoffice/internal/stack"
	"backoffice/internal/store"
	"backoffice/internal/uri"
	"backoffice/internal/widget"
)

// Cache lifetimes for shared caches in front of the back end.
const (
	cacheNews         = "s-maxage=3600, public"
	cacheWidget       = "s-maxage=180, public"
	cacheLastModified = "s-maxage=60, public"
)

// Store is the subset of store.Store the handlers read from.
type Store interface {
	ChangeActivity(ctx context.Context, limit int) ([]store.ChangeEntry, error)
	SystemActivity(ctx context.Context, q store.SystemQuery) ([]store.SystemEntry, error)
	ChangelogByContentType(ctx context.Context, contentType string, opts store.ChangelogOptions) ([]store.ChangeEntry, error)
	LatestContent(ctx context.Context, contentType string, limit int) ([]store.Content, error)
	PublishedContent(ctx context.Context, contentType string) ([]store.Content, error)
	Tags(ctx context.Context, taxonomyType string) ([]string, error)
	PopularTags(ctx context.Context, taxonomyType string, limit int) ([]store.TagCount, error)
}

// Recorder observes handler outcomes; metrics.Metrics satisfies it.
type Recorder interface {
	ObserveTestMail(result string)
}

// Deps are the collaborators a Handler serves requests with.
type Deps struct {
	Config   *config.Config
	Store    Store
	Types    *contenttype.Registry
	News     *news.Feed
	Widgets  *widget.Queue
	Files    *filestore.Manager
	Stack    *stack.Stack
	URIs     *uri.Generator
	Search   *omnisearch.Searcher
	Readme   *readme.Renderer
	Mail     mailer.Sender
	Sessions *session.Manager
	Recorder Recorder
	Logger   *slog.Logger
}

// Handler serves the async back-end routes under the configured mount prefix.
type Handler struct {
	Deps

	prefix   string
	fallback language.Tag
	mux      *http.ServeMux
	logger   *slog.Logger

	mailInterval time.Duration
	limitersMu   sync.Mutex
	limiters     map[int64]*rate.Limiter
}

type route struct {
	method      string
	path        string
	description string
	handle      http.HandlerFunc
}

// New builds a Handler and registers its routes.
func New(deps Deps) *Handler {
	prefix := strings.TrimRight(deps.Config.Paths.MountPrefix, "/")
	h := &Handler{
		Deps:         deps,
		prefix:       prefix,
		fallback:     i18n.ParseLocale(deps.Config.Site.Locale),
		mux:          http.NewServeMux(),
		logger:       logging.NewComponentLogger(deps.Logger, "async"),
		mailInterval: time.Duration(deps.Config.Mail.TestIntervalSeconds) * time.Second,
		limiters:     make(map[int64]*rate.Limiter),
	}
	for _, rt := range h.routes() {
		pattern := rt.method + " " + prefix + rt.path
		h.mux.Handle(pattern, h.requestContext(h.Sessions.Middleware(rt.handle)))
	}
	return h
}

func (h *Handler) routes() []route {
	return []route{
		{http.MethodGet, "/dashboardnews", "Dashboard news panels", h.dashboardNews},
		{http.MethodGet, "/latestactivity", "Latest changes and logins", h.latestActivity},
		{http.MethodGet, "/filesautocomplete", "File name autocomplete", h.filesAutocomplete},
		{http.MethodGet, "/readme/{filename...}", "Extension README as HTML", h.readmeHTML},
		{http.MethodGet, "/widget/{key}", "Deferred widget content", h.renderWidget},
		{http.MethodGet, "/widgets/{location}/{type}", "Widgets of one location", h.widgetHolder},
		{http.MethodGet, "/makeuri", "Unique slug for a title", h.makeURI},
		{http.MethodGet, "/lastmodified/{contenttypeslug}", "Recently edited records", h.lastModified},
		{http.MethodGet, "/lastmodified/{contenttypeslug}/{contentid}", "Recently edited records", h.lastModified},
		{http.MethodGet, "/filebrowser/{contenttype...}", "Published records per content type", h.fileBrowser},
		{http.MethodGet, "/browse", "Folder listing", h.browse},
		{http.MethodGet, "/browse/{namespace}", "Folder listing", h.browse},
		{http.MethodGet, "/browse/{namespace}/{path...}", "Folder listing", h.browse},
		{http.MethodPost, "/renamefile", "Rename a file", h.renameFile},
		{http.MethodPost, "/deletefile", "Delete a file", h.deleteFile},
		{http.MethodPost, "/duplicatefile", "Copy a file next to itself", h.duplicateFile},
		{http.MethodGet, "/addstack/{filename...}", "Put a file on the stack", h.addStack},
		{http.MethodGet, "/tags/{taxonomytype}", "Distinct tags", h.tags},
		{http.MethodGet, "/populartags/{taxonomytype}", "Most used tags", h.popularTags},
		{http.MethodGet, "/showstack", "Stack panel", h.showStack},
		{http.MethodGet, "/omnisearch", "Omnisearch suggestions", h.omniSearch},
		{http.MethodPost, "/folder/rename", "Rename a folder", h.renameFolder},
		{http.MethodPost, "/folder/remove", "Remove a folder", h.removeFolder},
		{http.MethodPost, "/folder/create", "Create a folder", h.createFolder},
		{http.MethodGet, "/changelog", "Changelog panel", h.changelog},
		{http.MethodGet, "/changelog/{contenttype}", "Changelog panel", h.changelog},
		{http.MethodGet, "/changelog/{contenttype}/{contentid}", "Changelog panel", h.changelog},
		{http.MethodGet, "/email/{type}/{recipient}", "Send a test email to the current user", h.email},
	}
}

// Routes lists the registered endpoints with the mount prefix applied.
func (h *Handler) Routes() []api.Route {
	rts := h.routes()
	out := make([]api.Route, 0, len(rts))
	for _, rt := range rts {
		out = append(out, api.Route{Method: rt.method, Path: h.prefix + rt.path, Description: rt.description})
	}
	api.SortRoutes(out)
	return out
}

// Prefix returns the mount prefix without a trailing slash.
func (h *Handler) Prefix() string {
	return h.prefix
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) printer(r *http.Request) *message.Printer {
	return i18n.Printer(i18n.ResolveTag(r, h.fallback))
}

func (h *Handler) writeHTML(w http.ResponseWriter, r *http.Request, cacheControl string, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.ErrorContext(r.Context(), "render failed", logging.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", logging.Error(err))
	}
}

func (h *Handler) writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// writeResult answers a mutating request with a JSON boolean. Failures are
// logged and reported as false.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil {
		logging.WarnWithContext(r.Context(), h.logger, op+" failed", "file_operation",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the back end reports the operation as unsuccessful"),
		)
		h.writeJSON(w, r, http.StatusOK, false)
		return
	}
	h.writeJSON(w, r, http.StatusOK, true)
}
