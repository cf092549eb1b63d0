// Package errs defines custom error types and utilities.
//
// Its purpose is to give every non-success response the same JSON shape
// (HTTPError, optionally carrying FieldErrors) so clients receive
// meaningful, actionable and consistent error messages.
//
//   - Return consistent error shapes to API clients (JSON).
//   - Support field-level validation errors for request bodies.
//   - Provide errors that play nicely with Go's standard errors package.
package errs
