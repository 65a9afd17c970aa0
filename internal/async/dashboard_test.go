package async_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backoffice/internal/testsupport"
)

func newsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "type": "alert", "title": "Security release"},
			{"id": 2, "type": "information", "title": "Welcome aboard"}
		]`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDashboardNewsRendersAlertAndInformation(t *testing.T) {
	server := newsServer(t)
	f := newFixture(t, testsupport.WithNewsSource(server.URL+"/"))

	rec := f.get(t, "/async/dashboardnews")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "s-maxage=3600, public" {
		t.Fatalf("unexpected cache header %q", rec.Header().Get("Cache-Control"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Security release") || !strings.Contains(body, "Welcome aboard") {
		t.Fatalf("expected both panels, got %s", body)
	}
}

func TestDashboardNewsDisabledKeepsAlerts(t *testing.T) {
	server := newsServer(t)
	f := newFixture(t, testsupport.WithNewsSource(server.URL+"/"))
	f.cfg.News.Disabled = true

	body := f.get(t, "/async/dashboardnews").Body.String()
	if !strings.Contains(body, "Security release") {
		t.Fatalf("alerts must always render, got %s", body)
	}
	if strings.Contains(body, "Welcome aboard") {
		t.Fatalf("information should be hidden, got %s", body)
	}
}

func TestDashboardNewsUnreachableSource(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	source := server.URL + "/"
	server.Close()
	f := newFixture(t, testsupport.WithNewsSource(source))

	rec := f.get(t, "/async/dashboardnews")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>Unable to connect to "+source+"</p>") {
		t.Fatalf("expected connection notice, got %s", rec.Body.String())
	}
}
