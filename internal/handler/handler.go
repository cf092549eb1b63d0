// Package handler is the HTTP layer between the router and the service
// layer.
//
// It binds requests, runs validation through the validation package, calls
// the service and writes JSON responses. Errors are returned untouched to
// the global error handler.
package handler
