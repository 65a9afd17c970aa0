package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir          string `toml:"data_dir"`
	LogDir           string `toml:"log_dir"`
	ExtensionsDir    string `toml:"extensions_dir"`
	ContentTypesFile string `toml:"contenttypes_file"`
	APIBind          string `toml:"api_bind"`
	MountPrefix      string `toml:"mount_prefix"`
	// MetricsToken, when set, must be sent as a bearer token to scrape /metrics.
	MetricsToken string `toml:"metrics_token"`
}

// Site describes the installation the back end serves.
type Site struct {
	Name      string `toml:"name"`
	Version   string `toml:"version"`
	Locale    string `toml:"locale"`
	Canonical string `toml:"canonical"`
}

// Database contains SQLite location and table naming.
type Database struct {
	Path   string `toml:"path"`
	Prefix string `toml:"prefix"`
}

// Filesystem maps namespace names to directories.
type Filesystem struct {
	Namespaces      map[string]string `toml:"namespaces"`
	UploadNamespace string            `toml:"upload_namespace"`
	AcceptFileTypes []string          `toml:"accept_file_types"`
}

// News configures the dashboard news feed.
type News struct {
	Source                string `toml:"source"`
	CacheTTLSeconds       int    `toml:"cache_ttl"`
	ConnectTimeoutSeconds int    `toml:"connect_timeout"`
	Disabled              bool   `toml:"disabled"`
}

// Proxy configures an optional outbound HTTP proxy for remote fetches.
type Proxy struct {
	Host     string `toml:"host"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// Changelog toggles content changelog based panels.
type Changelog struct {
	Enabled bool `toml:"enabled"`
}

// Mail contains SMTP settings for outgoing notifications.
type Mail struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	SenderMail string `toml:"sender_mail"`
	SenderName string `toml:"sender_name"`
	TLS        bool   `toml:"tls"`
	// TestIntervalSeconds throttles the test-email endpoint per user.
	TestIntervalSeconds int `toml:"test_interval"`
}

// Session configures signed session tokens.
type Session struct {
	Key        string `toml:"key"`
	CookieName string `toml:"cookie_name"`
	TTLMinutes int    `toml:"ttl"`
}

// Widget is a statically configured widget queued at start-up.
type Widget struct {
	Key      string `toml:"key"`
	Type     string `toml:"type"`
	Location string `toml:"location"`
	Content  string `toml:"content"`
	Priority int    `toml:"priority"`
	Class    string `toml:"class"`
	Defer    bool   `toml:"defer"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	ActivityLevel string `toml:"activity_level"`
}

// Config encapsulates all configuration values for the back end.
//
// Configuration sections by subsystem:
//   - Paths: data, log and extension directories plus the API bind address
//   - Site: name and version reported to the news feed and in emails
//   - Database: SQLite path and table prefix
//   - Filesystem: namespaces exposed to the file browser
//   - News/Proxy: dashboard news feed fetching
//   - Changelog: whether last-modified panels read the content changelog
//   - Mail: SMTP transport for test emails
//   - Session: signed session tokens
//   - Permissions: permission name to role list
//   - Widgets: statically configured widgets
//   - Logging: log format and level
type Config struct {
	Paths       Paths               `toml:"paths"`
	Site        Site                `toml:"site"`
	Database    Database            `toml:"database"`
	Filesystem  Filesystem          `toml:"filesystem"`
	News        News                `toml:"news"`
	Proxy       Proxy               `toml:"proxy"`
	Changelog   Changelog           `toml:"changelog"`
	Mail        Mail                `toml:"mail"`
	Session     Session             `toml:"session"`
	Permissions map[string][]string `toml:"permissions"`
	Widgets     []Widget            `toml:"widgets"`
	Logging     Logging             `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("backoffice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// Namespace roots are created on a best-effort basis so a missing mount does
// not prevent the daemon from serving the remaining panels.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Database.Path)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, root := range c.Filesystem.Namespaces {
		_ = os.MkdirAll(root, 0o755)
	}
	return nil
}

// LockPath returns the single-instance lock file used by the daemon.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "backofficed.lock")
}

// TablePrefix returns the configured table prefix.
func (c *Config) TablePrefix() string {
	return c.Database.Prefix
}

// Allowed lists the roles granted a permission. Unknown permissions have no roles.
func (c *Config) Allowed(permission string) []string {
	if c == nil || c.Permissions == nil {
		return nil
	}
	return c.Permissions[permission]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
