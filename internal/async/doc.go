// Package async serves the back-end's asynchronous endpoints: HTML fragments,
// JSON lists and booleans requested by the admin pages' JavaScript.
//
// Every route sits under the configured mount prefix and passes through two
// wrappers. requestContext stamps a correlation id and the request details the
// activity log records; the session middleware rejects anonymous calls with
// 401. Handlers degrade rather than fail: store errors render empty panels,
// file operations answer false, and an unreachable news source becomes an
// inline notice.
//
// Routes returns the route catalog for tooling.
package async
