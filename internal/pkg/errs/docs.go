// Package errs provides the typed errors shared by the domain, application and adapter
// layers of the tracking service.
//
// Every type follows the same shape:
//   - a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ErrValueIsOutOfRange, ErrValueIsRequired)
//   - a struct carrying the offending parameter and an optional Cause
//   - constructors with and without a cause
//   - Unwrap returning the sentinel, so callers classify with errors.Is
//
// The HTTP adapter maps ErrObjectNotFound to 404 and the value errors to 400.
package errs
