// Package api defines wire-format types and converters for the async HTTP
// layer and the command-line client. It translates store rows into the JSON
// shapes the back-end JavaScript expects without coupling callers to
// internal types.
//
// # Key Types
//
// Tag and PopularTag: taxonomy autocomplete payloads.
//
// Route: one entry of the async route catalog, listed by `backoffice routes`.
//
// Health: liveness payload served by the daemon.
//
// # Converters
//
// FromTags and FromTagCounts: store results -> JSON payloads. Both return
// empty, non-nil slices so the encoder emits [] rather than null.
//
// SortRoutes: deterministic ordering by path then method.
package api
