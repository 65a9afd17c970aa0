// Package services defines shared utilities consumed by the HTTP handlers and
// the collaborators they delegate to.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers, the authenticated
//     user, and request details for logging and activity tracking.
//   - Structured error markers plus the Wrap helper so handlers can decide
//     between degrading to an empty result and reporting a status code.
//
// Use these helpers when wiring new collaborators so error handling and
// observability stay uniform across endpoints.
package services
