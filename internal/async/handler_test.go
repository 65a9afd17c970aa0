package async_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"backoffice/internal/async"
	"backoffice/internal/config"
	"backoffice/internal/contenttype"
	"backoffice/internal/filestore"
	"backoffice/internal/logging"
	"backoffice/internal/mailer"
	"backoffice/internal/news"
	"backoffice/internal/omnisearch"
	"backoffice/internal/readme"
	"backoffice/internal/session"
	"backoffice/internal/stack"
	"backoffice/internal/store"
	"backoffice/internal/testsupport"
	"backoffice/internal/uri"
	"backoffice/internal/widget"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

type mailOutcomes struct {
	results []string
}

func (m *mailOutcomes) ObserveTestMail(result string) {
	m.results = append(m.results, result)
}

type fixture struct {
	cfg     *config.Config
	store   *store.Store
	handler *async.Handler
	mail    *outbox
	mailRec *mailOutcomes
	user    *store.User
	token   string
	files   string
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithContentTypes(testsupport.DefaultContentTypes)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Mail.TestIntervalSeconds = 0
	return newFixtureWithConfig(t, cfg)
}

func newFixtureWithConfig(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	types, err := contenttype.Load(cfg.Paths.ContentTypesFile)
	if err != nil {
		t.Fatalf("contenttype.Load: %v", err)
	}
	feed, err := news.New(cfg, st.DriverName(), logger)
	if err != nil {
		t.Fatalf("news.New: %v", err)
	}
	files := filestore.NewManager(cfg)
	sessions := session.NewManager(cfg, st, logger)
	f := &fixture{
		cfg:     cfg,
		store:   st,
		mail:    &outbox{},
		mailRec: &mailOutcomes{},
		files:   cfg.Filesystem.Namespaces["files"],
	}
	f.handler = async.New(async.Deps{
		Config:   cfg,
		Store:    st,
		Types:    types,
		News:     feed,
		Widgets:  widget.FromConfig(cfg),
		Files:    files,
		Stack:    stack.New(cfg, st, files, logger),
		URIs:     uri.NewGenerator(types, st),
		Search:   omnisearch.New(types, st, "/admin"),
		Readme:   readme.New(cfg.Paths.ExtensionsDir),
		Mail:     f.mail,
		Sessions: sessions,
		Recorder: f.mailRec,
		Logger:   logger,
	})

	f.user = testsupport.SeedUser(t, st, "admin", "root")
	token, _, err := sessions.Issue(context.Background(), f.user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	f.token = token
	return f
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestRoutesRequireSession(t *testing.T) {
	f := newFixture(t)
	for _, rt := range f.handler.Routes() {
		path := strings.NewReplacer("{filename...}", "a", "{key}", "k", "{contenttypeslug}", "pages",
			"{contentid}", "1", "{contenttype...}", "", "{namespace}", "files", "{path...}", "",
			"{taxonomytype}", "tags", "{contenttype}", "pages", "{type}", "test", "{recipient}", "me", "{location}", "dashboard").Replace(rt.Path)
		req := httptest.NewRequest(rt.Method, path, nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", rt.Method, path, rec.Code)
		}
	}
}

func TestRoutesCarryMountPrefix(t *testing.T) {
	f := newFixture(t)
	routes := f.handler.Routes()
	if len(routes) != 28 {
		t.Fatalf("expected 28 route patterns, got %d", len(routes))
	}
	for _, rt := range routes {
		if !strings.HasPrefix(rt.Path, "/async/") {
			t.Fatalf("route %s misses the mount prefix", rt.Path)
		}
	}
	if rec := f.get(t, "/async/omnisearch?q=dash"); rec.Header().Get(async.RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestTagsAndPopularTags(t *testing.T) {
	f := newFixture(t)
	a := testsupport.SeedContent(t, f.store, store.Content{ContentType: "entries", Slug: "a", Title: "A", Status: store.StatusPublished})
	b := testsupport.SeedContent(t, f.store, store.Content{ContentType: "entries", Slug: "b", Title: "B", Status: store.StatusPublished})
	testsupport.SeedTags(t, f.store, a, "tags", "go", "php")
	testsupport.SeedTags(t, f.store, b, "tags", "go")

	rec := f.get(t, "/async/tags/tags")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	var tags []map[string]any
	decodeJSON(t, rec, &tags)
	if len(tags) != 2 || tags[0]["slug"] != "go" || tags[1]["slug"] != "php" {
		t.Fatalf("unexpected tags %v", tags)
	}

	var popular []struct {
		Slug  string `json:"slug"`
		Count int    `json:"count"`
	}
	decodeJSON(t, f.get(t, "/async/populartags/tags?limit=1"), &popular)
	if len(popular) != 1 || popular[0].Slug != "go" || popular[0].Count != 2 {
		t.Fatalf("unexpected popular tags %+v", popular)
	}

	if body := strings.TrimSpace(f.get(t, "/async/tags/categories").Body.String()); body != "[]" {
		t.Fatalf("expected empty list for unused taxonomy, got %s", body)
	}
}

func TestMakeURI(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedContent(t, f.store, store.Content{ContentType: "pages", Slug: "hello-world", Title: "Hello", Status: store.StatusPublished})

	rec := f.get(t, "/async/makeuri?title=Hello+World&contenttypeslug=pages")
	if rec.Code != http.StatusOK || rec.Body.String() != "hello-world-1" {
		t.Fatalf("unexpected slug %d %q", rec.Code, rec.Body.String())
	}
	rec = f.get(t, "/async/makeuri?title=About&contenttypeslug=pages&fulluri=1")
	if rec.Body.String() != "/page/about" {
		t.Fatalf("unexpected full uri %q", rec.Body.String())
	}
	if rec := f.get(t, "/async/makeuri?title=x&contenttypeslug=nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown type, got %d", rec.Code)
	}
}

func TestLastModifiedSimpleAndChangelog(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		testsupport.SeedContent(t, f.store, store.Content{
			ContentType: "pages", Slug: strings.ToLower(title), Title: title,
			Status: store.StatusPublished, DateChanged: base.Add(time.Duration(i) * time.Minute),
		})
	}

	rec := f.get(t, "/async/lastmodified/page")
	if rec.Code != http.StatusOK || rec.Header().Get("Cache-Control") != "s-maxage=60, public" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Cache-Control"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Six") || strings.Contains(body, ">One<") {
		t.Fatalf("expected the five newest pages, got %s", body)
	}
	if !strings.Contains(body, `href="/page/six"`) {
		t.Fatalf("expected record link, got %s", body)
	}
	if rec := f.get(t, "/async/lastmodified/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown type, got %d", rec.Code)
	}

	g := newFixture(t, testsupport.WithChangelog())
	if _, err := g.store.AppendChange(context.Background(), store.ChangeEntry{
		Date: base, OwnerID: g.user.ID, Title: "Logged change", ContentType: "pages", ContentID: 9, MutationType: store.MutationUpdate,
	}); err != nil {
		t.Fatalf("AppendChange: %v", err)
	}
	body = g.get(t, "/async/lastmodified/pages/9").Body.String()
	if !strings.Contains(body, "Logged change") {
		t.Fatalf("expected changelog entry, got %s", body)
	}
	body = g.get(t, "/async/lastmodified/pages/3").Body.String()
	if strings.Contains(body, "Logged change") {
		t.Fatalf("expected content id filter, got %s", body)
	}
}

func TestChangelogPanel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		if _, err := f.store.AppendChange(ctx, store.ChangeEntry{
			Date: time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC), OwnerID: f.user.ID, Title: "Entry",
			ContentType: "entries", ContentID: 1, MutationType: store.MutationInsert,
		}); err != nil {
			t.Fatalf("AppendChange: %v", err)
		}
	}
	for _, target := range []string{"/async/changelog", "/async/changelog/entries", "/async/changelog/entry/1"} {
		body := f.get(t, target).Body.String()
		if n := strings.Count(body, "mutation-insert"); n != 4 {
			t.Fatalf("%s: expected 4 entries, got %d in %s", target, n, body)
		}
	}
	if body := f.get(t, "/async/changelog/pages").Body.String(); !strings.Contains(body, "No changes recorded.") {
		t.Fatalf("expected empty panel for pages, got %s", body)
	}
}

func TestFileBrowserListsPublishedRecords(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedContent(t, f.store, store.Content{ContentType: "pages", Slug: "live", Title: "Live page", Status: store.StatusPublished})
	testsupport.SeedContent(t, f.store, store.Content{ContentType: "pages", Slug: "draft", Title: "Draft page", Status: store.StatusDraft})

	body := f.get(t, "/async/filebrowser/").Body.String()
	if !strings.Contains(body, "Live page") || strings.Contains(body, "Draft page") {
		t.Fatalf("unexpected file browser %s", body)
	}
}

func TestOmnisearch(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedContent(t, f.store, store.Content{ContentType: "pages", Slug: "dashing", Title: "Dashing", Status: store.StatusPublished})

	var options []omnisearch.Option
	decodeJSON(t, f.get(t, "/async/omnisearch?q=dash"), &options)
	if len(options) < 2 || options[0].Label != "Dashboard" || options[0].Priority != omnisearch.PriorityLandingPage {
		t.Fatalf("unexpected options %+v", options)
	}

	if body := strings.TrimSpace(f.get(t, "/async/omnisearch?q=da").Body.String()); body != "[]" {
		t.Fatalf("expected empty list for short query, got %s", body)
	}
}

func TestLatestActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.store.AppendSystemLog(ctx, store.SystemEntry{
		Level: "info", Date: time.Now(), Message: "Logged in: admin", OwnerID: f.user.ID, Context: "authentication",
	}); err != nil {
		t.Fatalf("AppendSystemLog: %v", err)
	}
	if _, err := f.store.AppendSystemLog(ctx, store.SystemEntry{
		Level: "info", Date: time.Now(), Message: "Cache cleared", Context: "cache",
	}); err != nil {
		t.Fatalf("AppendSystemLog: %v", err)
	}

	rec := f.get(t, "/async/latestactivity")
	if rec.Header().Get("Cache-Control") != "s-maxage=3600, public" {
		t.Fatalf("unexpected cache header %q", rec.Header().Get("Cache-Control"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Logged in: admin") || strings.Contains(body, "Cache cleared") {
		t.Fatalf("expected only authentication entries, got %s", body)
	}
	if strings.Contains(body, "Latest changes") {
		t.Fatalf("expected empty change panel to be omitted, got %s", body)
	}
}

func TestWidgetAndReadme(t *testing.T) {
	f := newFixture(t, testsupport.WithWidgets(config.Widget{
		Key: "hello", Type: "backend", Location: "dashboard_aside_top", Content: "<b>hi</b>", Defer: true,
	}))

	rec := f.get(t, "/async/widget/hello")
	if rec.Code != http.StatusOK || rec.Body.String() != "<b>hi</b>" {
		t.Fatalf("unexpected widget %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "s-maxage=180, public" {
		t.Fatalf("unexpected cache header %q", rec.Header().Get("Cache-Control"))
	}
	if rec := f.get(t, "/async/widget/missing"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	holder := f.get(t, "/async/widgets/dashboard_aside_top/backend").Body.String()
	if !strings.HasPrefix(holder, `<div class="widgetholder widgetholder-dashboard_aside_top">`) ||
		!strings.Contains(holder, `data-key="hello" data-defer="true"></div>`) {
		t.Fatalf("unexpected holder %q", holder)
	}
	if empty := f.get(t, "/async/widgets/nowhere/backend").Body.String(); empty != `<div class="widgetholder widgetholder-nowhere"></div>` {
		t.Fatalf("expected empty holder, got %q", empty)
	}

	testsupport.WriteText(t, filepath.Join(f.cfg.Paths.ExtensionsDir, "vendor", "acme", "seo", "README.md"), "# SEO\n\nHello *there*")
	rec = f.get(t, "/async/readme/acme/seo/README.md")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<h1>SEO</h1>") {
		t.Fatalf("unexpected readme %d %q", rec.Code, rec.Body.String())
	}
	rec = f.get(t, "/async/readme/acme/seo/composer.json")
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Not allowed") {
		t.Fatalf("expected not allowed, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestEmailSendsToCurrentUserAndThrottles(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/async/email/test/someone@else.test")
	if rec.Code != http.StatusOK || rec.Body.String() != "Done" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(f.mail.sent))
	}
	msg := f.mail.sent[0]
	if msg.To != "admin@example.test" {
		t.Fatalf("mail must go to the current user, got %q", msg.To)
	}
	if msg.Subject != "Test email from Test Site" || msg.FromName != "Test Site" {
		t.Fatalf("unexpected headers %+v", msg)
	}
	if msg.From != "backoffice@example.com" {
		t.Fatalf("unexpected default sender %q", msg.From)
	}
	if !strings.Contains(msg.HTML, "Requested by admin from 192.0.2.1.") {
		t.Fatalf("unexpected body %s", msg.HTML)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithContentTypes(testsupport.DefaultContentTypes))
	cfg.Mail.TestIntervalSeconds = 60
	throttled := newFixtureWithConfig(t, cfg)
	if rec := throttled.get(t, "/async/email/test/x"); rec.Code != http.StatusOK {
		t.Fatalf("first mail should pass, got %d", rec.Code)
	}
	rec = throttled.get(t, "/async/email/test/x")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := throttled.mailRec.results; len(got) != 2 || got[0] != "sent" || got[1] != "throttled" {
		t.Fatalf("unexpected mail outcomes %v", got)
	}
}
