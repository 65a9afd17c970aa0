package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Tag is a taxonomy slug offered by tag autocomplete.
type Tag struct {
	Slug string `json:"slug"`
}

// PopularTag is a taxonomy slug with its usage count.
type PopularTag struct {
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Route describes one async endpoint.
type Route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Health is the daemon liveness payload.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	StartedAt string `json:"startedAt,omitempty"`
}
