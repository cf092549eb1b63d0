// Package middleware stores the middleware installed on every route.
//
// It covers request IDs, New Relic tracing, the request-scoped logger,
// request logging, CORS, secure headers, panic recovery and the global error
// handler that shapes every non-200 response.
package middleware
