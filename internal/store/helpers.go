package store

import (
	"database/sql"
	"time"
)

// dateLayout sorts lexically in chronological order.
const dateLayout = "2006-01-02 15:04:05"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatDate(t)
}

func parseDate(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(dateLayout, raw.String, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
