package async

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/logging"
	"backoffice/internal/services"
)

// RequestIDHeader carries the correlation id back to the client.
const RequestIDHeader = "X-Request-Id"

// requestContext annotates the request with a correlation id and the
// request details the activity log records. It runs after routing so the
// matched pattern is known.
func (h *Handler) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		ctx := services.WithRequestID(r.Context(), id)
		ctx = services.WithRequestInfo(ctx, services.RequestInfo{
			URI:   r.URL.RequestURI(),
			Route: r.Pattern,
			IP:    clientIP(r),
		})
		w.Header().Set(RequestIDHeader, id)

		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)

		h.logger.DebugContext(ctx, "async request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(start)),
		)
	})
}

// clientIP returns the peer address, preferring the first X-Forwarded-For
// hop when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestHost returns the Host header without a port.
func requestHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		return r.Host
	}
	return host
}
