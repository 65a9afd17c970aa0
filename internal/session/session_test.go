package session_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"backoffice/internal/logging"
	"backoffice/internal/services"
	"backoffice/internal/session"
	"backoffice/internal/store"
	"backoffice/internal/testsupport"
)

type fixture struct {
	manager  *session.Manager
	store    *store.Store
	rejected []string
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Permissions = map[string][]string{"files:uploads": {"editor"}}
	st := testsupport.MustOpenStore(t, cfg)
	f := &fixture{store: st}
	opts = append(opts, session.WithRejectionHook(func(reason string) {
		f.rejected = append(f.rejected, reason)
	}))
	f.manager = session.NewManager(cfg, st, logging.NewNop(), opts...)
	return f
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := session.UserFromContext(r.Context())
		_, name, _ := services.UserFromContext(r.Context())
		if user == nil || name != user.Username {
			http.Error(w, "user missing from context", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("hello " + user.Username))
	})
}

func TestMiddlewareRejectsMissingSession(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.manager.Middleware(protected()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/async/tags/tags", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "You must be logged in to use this.") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if len(f.rejected) != 1 || f.rejected[0] != session.ReasonMissing {
		t.Fatalf("unexpected rejection reasons %v", f.rejected)
	}
}

func TestMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.store, "admin", "root")
	token, expires, err := f.manager.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/async/tags/tags", nil)
	req.AddCookie(f.manager.Cookie(token, expires))
	rec := httptest.NewRecorder()
	f.manager.Middleware(protected()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "hello admin" {
		t.Fatalf("cookie auth failed: %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/async/tags/tags", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	f.manager.Middleware(protected()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer auth failed: %d %q", rec.Code, rec.Body.String())
	}
}

func TestIssueRecordsAuthenticationActivity(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.store, "admin", "root")

	// Route session logs through the activity tee to the store.
	cfg := testsupport.NewConfig(t)
	logger := slog.New(logging.NewActivityHandler(f.store, slog.LevelInfo))
	manager := session.NewManager(cfg, f.store, logger)
	if _, _, err := manager.Issue(context.Background(), user); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	entries, err := f.store.SystemActivity(context.Background(), store.SystemQuery{Limit: 8, Context: "authentication"})
	if err != nil {
		t.Fatalf("SystemActivity: %v", err)
	}
	if len(entries) != 1 || entries[0].OwnerID != user.ID || !strings.Contains(entries[0].Message, "admin") {
		t.Fatalf("unexpected activity: %+v", entries)
	}
	refreshed, _ := f.store.UserByID(context.Background(), user.ID)
	if refreshed.LastSeen.IsZero() {
		t.Fatal("expected last seen to be updated")
	}
}

func TestValidateRejectsExpiredAndTampered(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	f := newFixture(t, session.WithClock(func() time.Time { return now }))
	user := testsupport.SeedUser(t, f.store, "editor", "editor")
	token, _, err := f.manager.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := f.manager.Validate(context.Background(), token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		SessionID: "x",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "editor",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("some-other-key-0123456789abcdef!!"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.manager.Validate(context.Background(), forged); err == nil {
		t.Fatal("expected forged token to be rejected")
	}

	now = issuedAt.Add(24 * time.Hour)
	if _, err := f.manager.Validate(context.Background(), token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestDisabledUserIsRejected(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.store, "former", "editor")
	token, _, err := f.manager.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	user.Enabled = false
	if _, err := f.store.UpsertUser(context.Background(), *user); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/async/omnisearch", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.manager.Middleware(protected()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if f.rejected[len(f.rejected)-1] != session.ReasonDisabled {
		t.Fatalf("expected disabled reason, got %v", f.rejected)
	}
}

func TestAllowed(t *testing.T) {
	f := newFixture(t)
	root := &store.User{Username: "root", Roles: []string{"root"}, Enabled: true}
	editor := &store.User{Username: "ed", Roles: []string{"editor"}, Enabled: true}
	guest := &store.User{Username: "guest", Roles: []string{"guest"}, Enabled: true}

	if !f.manager.Allowed(root, "anything") {
		t.Fatal("root should be allowed everything")
	}
	if !f.manager.Allowed(editor, "files:uploads") {
		t.Fatal("editor should be allowed to upload")
	}
	if f.manager.Allowed(guest, "files:uploads") || f.manager.Allowed(nil, "files:uploads") {
		t.Fatal("guest and nil users must be denied")
	}
}
