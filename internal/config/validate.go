package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const minSessionKeyLength = 32

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateFilesystem(); err != nil {
		return err
	}
	if err := c.validateNews(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateWidgets(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if !tablePrefixPattern.MatchString(c.Database.Prefix) {
		return fmt.Errorf("database.prefix %q may only contain letters, digits and underscores", c.Database.Prefix)
	}
	return nil
}

func (c *Config) validateFilesystem() error {
	if len(c.Filesystem.Namespaces) == 0 {
		return errors.New("filesystem.namespaces must define at least one namespace")
	}
	if _, ok := c.Filesystem.Namespaces[c.Filesystem.UploadNamespace]; !ok {
		return fmt.Errorf("filesystem.upload_namespace %q is not a configured namespace", c.Filesystem.UploadNamespace)
	}
	return nil
}

func (c *Config) validateNews() error {
	if c.News.Source != "" {
		parsed, err := url.Parse(c.News.Source)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("news.source %q must be an absolute URL", c.News.Source)
		}
	}
	if c.Proxy.Host != "" {
		if _, err := url.Parse(proxyURLString(c.Proxy.Host)); err != nil {
			return fmt.Errorf("proxy.host: %w", err)
		}
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.Key == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("session.key is required. Set BACKOFFICE_SESSION_KEY env var or edit %s (create with 'backoffice config init')", defaultPath)
	}
	if len(c.Session.Key) < minSessionKeyLength {
		return fmt.Errorf("session.key must be at least %d characters", minSessionKeyLength)
	}
	return nil
}

func (c *Config) validateWidgets() error {
	for i, w := range c.Widgets {
		if strings.TrimSpace(w.Location) == "" {
			return fmt.Errorf("widgets[%d].location must be set", i)
		}
		if strings.TrimSpace(w.Type) == "" {
			return fmt.Errorf("widgets[%d].type must be set", i)
		}
	}
	return nil
}

// ProxyURL returns the configured proxy as a URL with credentials attached,
// or nil when no proxy is configured.
func (c *Config) ProxyURL() (*url.URL, error) {
	if c == nil || c.Proxy.Host == "" {
		return nil, nil
	}
	parsed, err := url.Parse(proxyURLString(c.Proxy.Host))
	if err != nil {
		return nil, fmt.Errorf("parse proxy host: %w", err)
	}
	if c.Proxy.User != "" {
		parsed.User = url.UserPassword(c.Proxy.User, c.Proxy.Password)
	}
	return parsed, nil
}

func proxyURLString(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "http://" + host
}
