// Package errs contains sentinel errors shared across layers so that
// handlers can map failures to HTTP statuses without string matching.
package errs

import "errors"

var (
	// ErrUnauthorized covers missing/invalid/expired credentials and
	// password mismatches. Handlers map it to 401 with a uniform body.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a unique constraint violation (e.g. sign-up
	// with an email that already exists).
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a request body failed schema validation.
	ErrValidation = errors.New("validation failed")
)
