package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backoffice/internal/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestMiddlewareLabelsByPattern(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /async/tags/{taxonomytype}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Middleware(mux)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/async/tags/tags", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	out := scrape(t, m)
	if !strings.Contains(out, `backoffice_async_request_duration_seconds_count{code="418",route="GET /async/tags/{taxonomytype}"} 1`) {
		t.Fatalf("expected pattern label in:\n%s", out)
	}
	if !strings.Contains(out, `route="unmatched"`) {
		t.Fatalf("expected unmatched route label in:\n%s", out)
	}
}

func TestCounters(t *testing.T) {
	m := metrics.New()
	m.ObserveNewsFetch("cached")
	m.ObserveNewsFetch("cached")
	m.ObserveAuthRejection("missing")
	m.ObserveTestMail("sent")

	out := scrape(t, m)
	for _, want := range []string{
		`backoffice_news_fetches_total{outcome="cached"} 2`,
		`backoffice_session_rejections_total{reason="missing"} 1`,
		`backoffice_mail_test_messages_total{result="sent"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}
