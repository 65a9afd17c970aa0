package widget

import (
	"sort"
	"sync"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"backoffice/internal/config"
	"backoffice/internal/services"
	"backoffice/internal/templates"
)

// Widget is an HTML fragment rendered into a named page slot.
type Widget struct {
	Key      string
	Type     string
	Location string
	Content  string
	Priority int
	Class    string
	Defer    bool
}

func (w Widget) view() templates.WidgetView {
	return templates.WidgetView{Key: w.Key, Type: w.Type, Class: w.Class, Content: w.Content, Defer: w.Defer}
}

// Queue holds the widgets registered for this process.
type Queue struct {
	mu      sync.RWMutex
	widgets []Widget
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// FromConfig returns a queue seeded with the configured widgets.
func FromConfig(cfg *config.Config) *Queue {
	q := NewQueue()
	if cfg == nil {
		return q
	}
	for _, w := range cfg.Widgets {
		q.Add(Widget{
			Key:      w.Key,
			Type:     w.Type,
			Location: w.Location,
			Content:  w.Content,
			Priority: w.Priority,
			Class:    w.Class,
			Defer:    w.Defer,
		})
	}
	return q
}

// Add queues w and returns its key, generating one when empty. A widget with
// an existing key replaces the earlier one.
func (q *Queue) Add(w Widget) string {
	if w.Key == "" {
		w.Key = uuid.NewString()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.widgets {
		if q.widgets[i].Key == w.Key {
			q.widgets[i] = w
			return w.Key
		}
	}
	q.widgets = append(q.widgets, w)
	return w.Key
}

// Get returns the widget with key.
func (q *Queue) Get(key string) (Widget, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, w := range q.widgets {
		if w.Key == key {
			return w, true
		}
	}
	return Widget{}, false
}

// Filter returns the widgets matching both location and type exactly, by
// descending priority and then insertion order. An empty location matches
// nothing.
func (q *Queue) Filter(location, widgetType string) []Widget {
	if location == "" {
		return nil
	}
	q.mu.RLock()
	var out []Widget
	for _, w := range q.widgets {
		if w.Location == location && w.Type == widgetType {
			out = append(out, w)
		}
	}
	q.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Count returns the number of widgets matching location and type.
func (q *Queue) Count(location, widgetType string) int {
	return len(q.Filter(location, widgetType))
}

// Has reports whether any widget matches location and type.
func (q *Queue) Has(location, widgetType string) bool {
	return q.Count(location, widgetType) > 0
}

// Render returns the content of a single widget, as served to deferred
// placeholders.
func (q *Queue) Render(key string) (templ.Component, error) {
	w, ok := q.Get(key)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "widget", "render", "unknown widget "+key, nil)
	}
	return templ.Raw(w.Content), nil
}

// Holder renders every widget for location and type inside a holder div.
func (q *Queue) Holder(location, widgetType string) templ.Component {
	matches := q.Filter(location, widgetType)
	views := make([]templates.WidgetView, len(matches))
	for i, w := range matches {
		views[i] = w.view()
	}
	return templates.WidgetHolder(location, views)
}
