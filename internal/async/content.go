package async

import (
	"net/http"
	"strconv"
	"strings"

	"backoffice/internal/api"
	"backoffice/internal/contenttype"
	"backoffice/internal/logging"
	"backoffice/internal/omnisearch"
	"backoffice/internal/services"
	"backoffice/internal/store"
	"backoffice/internal/templates"
	"backoffice/internal/uri"
)

const (
	lastModifiedLimit = 5
	changelogLimit    = 4
)

func (h *Handler) makeURI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, _ := strconv.ParseInt(q.Get("id"), 10, 64)
	slug, err := h.URIs.URI(r.Context(), uri.Request{
		Title:       q.Get("title"),
		ID:          id,
		ContentType: q.Get("contenttypeslug"),
		FullURI:     queryBool(q.Get("fulluri")),
		SlugField:   q.Get("slugfield"),
	})
	if err != nil {
		h.logger.InfoContext(r.Context(), "make uri failed", logging.Error(err))
		status := services.HTTPStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.writeText(w, http.StatusOK, slug)
}

// lastModified lists the latest edits of a content type. With the changelog
// enabled the panel reads the changelog, optionally for a single record.
func (h *Handler) lastModified(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.Types.Get(r.PathValue("contenttypeslug"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	loc := h.printer(r)

	if h.Config.Changelog.Enabled {
		entries, err := h.Store.ChangelogByContentType(ctx, ct.Slug, store.ChangelogOptions{
			Limit:     lastModifiedLimit,
			ContentID: pathID(r, "contentid"),
		})
		if err != nil {
			h.logger.WarnContext(ctx, "changelog unavailable", logging.Error(err))
			entries = nil
		}
		h.writeHTML(w, r, cacheLastModified, templates.LastModifiedChanges(loc, ct.Name, entries))
		return
	}

	records, err := h.Store.LatestContent(ctx, ct.Slug, lastModifiedLimit)
	if err != nil {
		h.logger.WarnContext(ctx, "latest content unavailable", logging.Error(err))
		records = nil
	}
	h.writeHTML(w, r, cacheLastModified, templates.LastModified(loc, ct.Name, recordViews(ct, records)))
}

// fileBrowser lists the published records of every content type for the
// link picker. The path segment is accepted but does not narrow the list.
func (h *Handler) fileBrowser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	types := h.Types.All()
	groups := make([]templates.RecordGroup, 0, len(types))
	for i := range types {
		ct := &types[i]
		records, err := h.Store.PublishedContent(ctx, ct.Slug)
		if err != nil {
			h.logger.WarnContext(ctx, "published content unavailable",
				logging.String("contenttype", ct.Slug),
				logging.Error(err),
			)
			continue
		}
		groups = append(groups, templates.RecordGroup{
			ContentType: ct.Slug,
			Name:        ct.Name,
			Records:     recordViews(ct, records),
		})
	}
	h.writeHTML(w, r, "", templates.FileBrowser(groups))
}

func (h *Handler) tags(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.Store.Tags(r.Context(), r.PathValue("taxonomytype"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "tags unavailable", logging.Error(err))
	}
	h.writeJSON(w, r, http.StatusOK, api.FromTags(slugs))
}

func (h *Handler) popularTags(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultPopularTagsLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	counts, err := h.Store.PopularTags(r.Context(), r.PathValue("taxonomytype"), limit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "popular tags unavailable", logging.Error(err))
	}
	h.writeJSON(w, r, http.StatusOK, api.FromTagCounts(counts))
}

func (h *Handler) omniSearch(w http.ResponseWriter, r *http.Request) {
	options, err := h.Search.Query(r.Context(), h.printer(r), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "omnisearch failed", logging.Error(err))
	}
	if options == nil {
		options = []omnisearch.Option{}
	}
	h.writeJSON(w, r, http.StatusOK, options)
}

// changelog renders the change record panel. The content type and id are
// both optional.
func (h *Handler) changelog(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("contenttype")
	if ct, ok := h.Types.Get(slug); ok {
		slug = ct.Slug
	}
	entries, err := h.Store.ChangelogByContentType(r.Context(), slug, store.ChangelogOptions{
		Limit:     changelogLimit,
		ContentID: pathID(r, "contentid"),
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "changelog unavailable", logging.Error(err))
		entries = nil
	}
	h.writeHTML(w, r, "", templates.ChangeRecord(h.printer(r), entries))
}

func recordViews(ct *contenttype.ContentType, records []store.Content) []templates.RecordView {
	out := make([]templates.RecordView, 0, len(records))
	for _, c := range records {
		out = append(out, templates.RecordView{
			ID:      c.ID,
			Title:   c.Title,
			Link:    recordLink(ct, c),
			Status:  c.Status,
			Changed: c.DateChanged,
		})
	}
	return out
}

// recordLink is the front-end path of a record.
func recordLink(ct *contenttype.ContentType, c store.Content) string {
	if c.Slug == "" {
		return "/" + ct.SingularSlug + "/" + strconv.FormatInt(c.ID, 10)
	}
	return "/" + ct.SingularSlug + "/" + c.Slug
}

func pathID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// queryBool accepts the truthy spellings HTML forms and scripts send.
func queryBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
