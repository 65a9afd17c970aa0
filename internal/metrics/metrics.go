// Package metrics exposes Prometheus instrumentation for the async API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

// Metrics owns a private registry so tests and embedded servers never collide
// with the global default registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	authRejections  *prometheus.CounterVec
	newsFetches     *prometheus.CounterVec
	mailsSent       *prometheus.CounterVec
}

// New registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "async",
				Name:      "request_duration_seconds",
				Help:      "Duration of async requests by route and status code.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "code"},
		),
		authRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "rejections_total",
				Help:      "Requests rejected for lacking a valid session.",
			},
			[]string{"reason"},
		),
		newsFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "news",
				Name:      "fetches_total",
				Help:      "Dashboard news lookups by outcome.",
			},
			[]string{"outcome"},
		),
		mailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mail",
				Name:      "test_messages_total",
				Help:      "Test emails by result.",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.requestDuration,
		m.authRejections,
		m.newsFetches,
		m.mailsSent,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveNewsFetch counts a news lookup outcome.
func (m *Metrics) ObserveNewsFetch(outcome string) {
	m.newsFetches.WithLabelValues(outcome).Inc()
}

// ObserveAuthRejection counts a rejected request.
func (m *Metrics) ObserveAuthRejection(reason string) {
	m.authRejections.WithLabelValues(reason).Inc()
}

// ObserveTestMail counts a test email attempt.
func (m *Metrics) ObserveTestMail(result string) {
	m.mailsSent.WithLabelValues(result).Inc()
}

// Middleware records request durations labelled with the matched route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.WithLabelValues(route, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
