// Package main hosts the backoffice CLI.
//
// The Cobra command tree scaffolds configuration, runs or stops the daemon,
// probes its health, prints the async route catalog, and covers the small
// amount of user, session and taxonomy administration needed to exercise the
// API without the full admin front end.
package main
