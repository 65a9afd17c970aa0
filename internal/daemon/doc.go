// Package daemon runs the long-lived backofficed process.
//
// It owns the HTTP listener that serves the async handler under its mount
// prefix, a /healthz probe backed by a database ping, and the Prometheus
// /metrics endpoint. A flock on the data directory keeps a second instance
// from binding the same database.
package daemon
