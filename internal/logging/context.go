package logging

import (
	"context"
	"log/slog"

	"backoffice/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldUser carries the authenticated username.
	FieldUser = "user"
	// FieldRoute carries the matched route name.
	FieldRoute = "route"
	// FieldEvent marks records that belong in the persisted activity log.
	FieldEvent = "event"
	// FieldEventType classifies warnings and errors.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	if _, name, ok := services.UserFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldUser, name))
	}
	if info, ok := services.RequestInfoFromContext(ctx); ok && info.Route != "" {
		fields = append(fields, slog.String(FieldRoute, info.Route))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
