// Package store persists content, taxonomy, changelog, activity, user, and
// stack data in SQLite.
//
// Table names carry the configured prefix. The schema is embedded and created
// on first open; a version table guards against running against a database
// from an incompatible release.
package store
