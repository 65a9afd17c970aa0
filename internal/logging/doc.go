// Package logging assembles structured slog loggers and formatting helpers used
// across the backoffice services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so handlers automatically tag log
// lines with correlation IDs, the authenticated user, and the route. Records
// carrying an event attribute are teed into the persisted activity log through
// NewActivityHandler. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
