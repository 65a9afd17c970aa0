// Package config loads, normalizes, and validates backoffice configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays secrets from the environment such
// as BACKOFFICE_SESSION_KEY. The Config type centralizes every knob the daemon
// and CLI need: namespaces for the file browser, the news feed source, SMTP
// transport, session signing, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a safe table prefix, and clear validation errors.
package config
