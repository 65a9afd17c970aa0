package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverlay lists secrets and deployment knobs that may come from the
// environment instead of the config file.
type envOverlay struct {
	SessionKey    string `env:"BACKOFFICE_SESSION_KEY"`
	SMTPPassword  string `env:"BACKOFFICE_SMTP_PASSWORD"`
	ProxyPassword string `env:"BACKOFFICE_PROXY_PASSWORD"`
	DBPath        string `env:"BACKOFFICE_DB_PATH"`
	APIBind       string `env:"BACKOFFICE_API_BIND"`
	MetricsToken  string `env:"BACKOFFICE_METRICS_TOKEN"`
}

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

func (c *Config) applyEnv() error {
	var overlay envOverlay
	if err := env.Parse(&overlay); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if value := strings.TrimSpace(overlay.SessionKey); value != "" {
		c.Session.Key = value
	}
	if value := strings.TrimSpace(overlay.SMTPPassword); value != "" {
		c.Mail.Password = value
	}
	if value := strings.TrimSpace(overlay.ProxyPassword); value != "" {
		c.Proxy.Password = value
	}
	if value := strings.TrimSpace(overlay.DBPath); value != "" {
		c.Database.Path = value
	}
	if value := strings.TrimSpace(overlay.APIBind); value != "" {
		c.Paths.APIBind = value
	}
	if value := strings.TrimSpace(overlay.MetricsToken); value != "" {
		c.Paths.MetricsToken = value
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	if err := c.normalizeFilesystem(); err != nil {
		return err
	}
	c.normalizeSite()
	c.normalizeNews()
	c.normalizeMail()
	c.normalizeSession()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ExtensionsDir, err = expandPath(c.Paths.ExtensionsDir); err != nil {
		return fmt.Errorf("paths.extensions_dir: %w", err)
	}
	if c.Paths.ContentTypesFile, err = expandPath(c.Paths.ContentTypesFile); err != nil {
		return fmt.Errorf("paths.contenttypes_file: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	prefix := strings.TrimSpace(c.Paths.MountPrefix)
	if prefix == "" {
		prefix = defaultMountPrefix
	}
	c.Paths.MountPrefix = "/" + strings.Trim(prefix, "/")
	return nil
}

func (c *Config) normalizeDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		c.Database.Path = filepath.Join(c.Paths.DataDir, defaultDatabaseFile)
	}
	var err error
	if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}
	c.Database.Prefix = strings.TrimSpace(c.Database.Prefix)
	return nil
}

func (c *Config) normalizeFilesystem() error {
	namespaces := make(map[string]string, len(c.Filesystem.Namespaces))
	for name, root := range c.Filesystem.Namespaces {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(root))
		if err != nil {
			return fmt.Errorf("filesystem.namespaces.%s: %w", name, err)
		}
		namespaces[name] = expanded
	}
	c.Filesystem.Namespaces = namespaces

	c.Filesystem.UploadNamespace = strings.ToLower(strings.TrimSpace(c.Filesystem.UploadNamespace))
	if c.Filesystem.UploadNamespace == "" {
		c.Filesystem.UploadNamespace = defaultUploadNamespace
	}

	exts := make([]string, 0, len(c.Filesystem.AcceptFileTypes))
	seen := make(map[string]struct{}, len(c.Filesystem.AcceptFileTypes))
	for _, ext := range c.Filesystem.AcceptFileTypes {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Filesystem.AcceptFileTypes = exts
	return nil
}

func (c *Config) normalizeSite() {
	c.Site.Name = strings.TrimSpace(c.Site.Name)
	if c.Site.Name == "" {
		c.Site.Name = defaultSiteName
	}
	c.Site.Version = strings.TrimSpace(c.Site.Version)
	if c.Site.Version == "" {
		c.Site.Version = defaultSiteVersion
	}
	c.Site.Locale = strings.TrimSpace(c.Site.Locale)
	if c.Site.Locale == "" {
		c.Site.Locale = defaultLocale
	}
	c.Site.Canonical = strings.TrimRight(strings.TrimSpace(c.Site.Canonical), "/")
}

func (c *Config) normalizeNews() {
	c.News.Source = strings.TrimSpace(c.News.Source)
	if c.News.CacheTTLSeconds <= 0 {
		c.News.CacheTTLSeconds = defaultNewsCacheTTLSeconds
	}
	if c.News.ConnectTimeoutSeconds <= 0 {
		c.News.ConnectTimeoutSeconds = defaultNewsConnectTimeout
	}
	c.Proxy.Host = strings.TrimSpace(c.Proxy.Host)
	c.Proxy.User = strings.TrimSpace(c.Proxy.User)
}

func (c *Config) normalizeMail() {
	c.Mail.Host = strings.TrimSpace(c.Mail.Host)
	c.Mail.User = strings.TrimSpace(c.Mail.User)
	c.Mail.SenderMail = strings.TrimSpace(c.Mail.SenderMail)
	c.Mail.SenderName = strings.TrimSpace(c.Mail.SenderName)
	if c.Mail.Port <= 0 {
		c.Mail.Port = defaultMailPort
	}
	if c.Mail.TestIntervalSeconds <= 0 {
		c.Mail.TestIntervalSeconds = defaultMailTestInterval
	}
}

func (c *Config) normalizeSession() {
	c.Session.Key = strings.TrimSpace(c.Session.Key)
	c.Session.CookieName = strings.TrimSpace(c.Session.CookieName)
	if c.Session.CookieName == "" {
		c.Session.CookieName = defaultSessionCookieName
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = defaultSessionTTLMinutes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json", "auto":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.ActivityLevel = strings.ToLower(strings.TrimSpace(c.Logging.ActivityLevel))
	if c.Logging.ActivityLevel == "" {
		c.Logging.ActivityLevel = defaultActivityLevel
	}
}
