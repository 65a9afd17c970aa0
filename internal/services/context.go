package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userKey      contextKey = "user"
	requestKey   contextKey = "request_info"
)

// RequestInfo describes the HTTP request a unit of work runs for.
type RequestInfo struct {
	URI   string
	Route string
	IP    string
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithUser annotates context with the authenticated user's id and name.
func WithUser(ctx context.Context, id int64, username string) context.Context {
	if username == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey, userRef{id: id, name: username})
}

type userRef struct {
	id   int64
	name string
}

// UserFromContext returns the authenticated user's id and name if present.
func UserFromContext(ctx context.Context) (int64, string, bool) {
	if v, ok := ctx.Value(userKey).(userRef); ok {
		return v.id, v.name, true
	}
	return 0, "", false
}

// WithRequestInfo annotates context with request details used by activity logging.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey, info)
}

// RequestInfoFromContext returns request details if present.
func RequestInfoFromContext(ctx context.Context) (RequestInfo, bool) {
	v, ok := ctx.Value(requestKey).(RequestInfo)
	return v, ok
}
