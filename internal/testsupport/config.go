package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"backoffice/internal/config"
)

// SessionKey signs sessions in test configs.
const SessionKey = "test-session-key-0123456789abcdef"

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Namespace roots are created so file operations work immediately.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExtensionsDir = filepath.Join(base, "extensions")
	cfgVal.Paths.ContentTypesFile = filepath.Join(base, "contenttypes.yml")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Database.Path = filepath.Join(base, "data", "backoffice.db")
	cfgVal.Filesystem.Namespaces = map[string]string{
		"files": filepath.Join(base, "files"),
		"theme": filepath.Join(base, "theme"),
	}
	cfgVal.Session.Key = SessionKey
	cfgVal.Site.Name = "Test Site"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, root := range builder.cfg.Filesystem.Namespaces {
		if err := os.MkdirAll(root, 0o755); err != nil {
			t.Fatalf("mkdir namespace %s: %v", root, err)
		}
	}
	return builder.cfg
}

// WithNewsSource points the dashboard news feed at source.
func WithNewsSource(source string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.News.Source = source
	}
}

// WithChangelog enables changelog backed panels.
func WithChangelog() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Changelog.Enabled = true
	}
}

// WithWidgets appends static widgets.
func WithWidgets(widgets ...config.Widget) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Widgets = append(b.cfg.Widgets, widgets...)
	}
}

// WithContentTypes writes a contenttypes.yml fixture with the given body.
func WithContentTypes(body string) ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, b.cfg.Paths.ContentTypesFile, body)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
