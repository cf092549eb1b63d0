// Package validation binds request data and turns validation failures into
// the client-facing errs.HTTPError shape.
//
// Struct tag rules come from the `validator` library; payloads with
// rules tags cannot express return CustomValidationErrors instead.
package validation
