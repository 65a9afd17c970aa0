package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	logTimestampLayout = "2006-01-02 15:04:05.000"
	redactedValue      = "[redacted]"
)

// secretKeys are attribute keys whose values never reach a log sink.
var secretKeys = []string{"password", "token", "authorization", "session_key"}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

// attrString renders v without quoting, for values used as labels.
func attrString(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	if v.Kind() == slog.KindTime {
		return formatTimestamp(v.Time())
	}
	return v.String()
}

// formatValue renders v for key=value output, quoting where a reader could
// misparse the pair.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool, slog.KindInt64, slog.KindUint64, slog.KindDuration:
		return v.String()
	default:
		return quoteIfNeeded(attrString(v))
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, secret := range secretKeys {
		if strings.Contains(key, secret) {
			return true
		}
	}
	return false
}

// redact masks secret attribute values.
func redact(attr slog.Attr) slog.Attr {
	if isSecretKey(attr.Key) && attr.Value.Kind() != slog.KindGroup {
		attr.Value = slog.StringValue(redactedValue)
	}
	return attr
}
