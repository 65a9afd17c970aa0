package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"backoffice/internal/config"
	"backoffice/internal/logging"
	"backoffice/internal/services"
)

type memorySink struct {
	mu      sync.Mutex
	entries []logging.ActivityEntry
}

func (s *memorySink) RecordActivity(_ context.Context, entry logging.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello", logging.String("panel", "news"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "backoffice.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) || !strings.Contains(string(data), `"level":"info"`) {
		t.Fatalf("unexpected json log line: %s", data)
	}
}

func TestConsoleLoggerFormatsComponentAndCritical(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "news")
	logger.Log(context.Background(), logging.LevelCritical, "unable to connect", logging.String("source", "https://news.example"))
	logger.Debug("hidden")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	for _, fragment := range []string{"CRIT", "news: unable to connect", "source=https://news.example"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "hidden") || strings.Contains(line, ".go:") {
		t.Fatalf("unexpected debug output or caller info: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"WARNING":  slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": logging.LevelCritical,
		"bogus":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if logging.LevelName(logging.LevelCritical) != "critical" {
		t.Fatal("expected critical level name")
	}
}

func TestActivityHandlerPersistsEventRecords(t *testing.T) {
	sink := &memorySink{}
	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{filepath.Join(t.TempDir(), "out.log")},
		Handlers:    []slog.Handler{logging.NewActivityHandler(sink, slog.LevelInfo)},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithUser(context.Background(), 3, "admin")
	ctx = services.WithRequestInfo(ctx, services.RequestInfo{URI: "/async/email/test/admin", Route: "emailNotification", IP: "10.1.1.1"})

	logger.InfoContext(ctx, "plain line")
	logger.InfoContext(ctx, "Sent test email", logging.Event("email"))
	logging.NewComponentLogger(logger, "session").With(logging.Event("authentication")).DebugContext(ctx, "below threshold")

	if len(sink.entries) != 1 {
		t.Fatalf("expected one persisted entry, got %d", len(sink.entries))
	}
	entry := sink.entries[0]
	if entry.Context != "email" || entry.Message != "Sent test email" || entry.Level != "info" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.OwnerID != 3 || entry.Route != "emailNotification" || entry.IP != "10.1.1.1" {
		t.Fatalf("expected request details on entry: %+v", entry)
	}
}

func TestActivityHandlerUsesEventFromWith(t *testing.T) {
	sink := &memorySink{}
	logger := slog.New(logging.NewActivityHandler(sink, slog.LevelInfo)).With(logging.Event("authentication"))
	logger.Warn("login failed")
	if len(sink.entries) != 1 || sink.entries[0].Context != "authentication" || sink.entries[0].Level != "warning" {
		t.Fatalf("unexpected entries: %+v", sink.entries)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	base, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-9")
	ctx = services.WithUser(ctx, 1, "editor")
	logging.WithContext(ctx, base).Info("scoped")

	data, _ := os.ReadFile(logPath)
	if !strings.Contains(string(data), "correlation_id=req-9") || !strings.Contains(string(data), "user=editor") {
		t.Fatalf("expected context fields, got %q", data)
	}
}

func TestSecretAttributesAreRedacted(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logPath := filepath.Join(t.TempDir(), format+".log")
		logger, err := logging.New(logging.Options{Format: format, OutputPaths: []string{logPath}})
		if err != nil {
			t.Fatalf("New(%s): %v", format, err)
		}
		logger.Info("smtp login",
			logging.String("smtp_password", "hunter2"),
			logging.String("Authorization", "Bearer abc.def.ghi"),
			logging.String("host", "mail.example.com"),
		)

		data, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		line := string(data)
		if strings.Contains(line, "hunter2") || strings.Contains(line, "abc.def.ghi") {
			t.Fatalf("%s: secret leaked: %s", format, line)
		}
		if !strings.Contains(line, "[redacted]") || !strings.Contains(line, "mail.example.com") {
			t.Fatalf("%s: unexpected line: %s", format, line)
		}
	}
}
