package logging

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"backoffice/internal/services"
)

// ActivityEntry is a single row of the persisted system activity log.
type ActivityEntry struct {
	Level      string
	Time       time.Time
	Message    string
	OwnerID    int64
	RequestURI string
	Route      string
	IP         string
	Context    string
	Source     string
}

// ActivitySink persists activity entries.
type ActivitySink interface {
	RecordActivity(ctx context.Context, entry ActivityEntry) error
}

type activityHandler struct {
	sink  ActivitySink
	level slog.Level
	event string
}

// NewActivityHandler returns a handler that forwards records tagged with an
// event attribute (see Event) to sink. Records below level or without an
// event are dropped.
func NewActivityHandler(sink ActivitySink, level slog.Level) slog.Handler {
	if sink == nil {
		return NoopHandler{}
	}
	return &activityHandler{sink: sink, level: level}
}

func (h *activityHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *activityHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	event := h.event
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == FieldEvent {
			event = attrString(attr.Value)
			return false
		}
		return true
	})
	if event == "" {
		return nil
	}

	entry := ActivityEntry{
		Level:   LevelName(record.Level),
		Time:    record.Time,
		Message: record.Message,
		Context: event,
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	if src := record.Source(); src != nil && src.File != "" {
		entry.Source = fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if id, _, ok := services.UserFromContext(ctx); ok {
		entry.OwnerID = id
	}
	if info, ok := services.RequestInfoFromContext(ctx); ok {
		entry.RequestURI = info.URI
		entry.Route = info.Route
		entry.IP = info.IP
	}
	return h.sink.RecordActivity(context.WithoutCancel(ctx), entry)
}

// WithAttrs keeps only the event tag; other attributes are not persisted.
func (h *activityHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	for _, attr := range attrs {
		if attr.Key == FieldEvent {
			clone.event = attrString(attr.Value)
		}
	}
	return &clone
}

func (h *activityHandler) WithGroup(string) slog.Handler {
	clone := *h
	return &clone
}
