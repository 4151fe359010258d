// Package apperr defines the error taxonomy surfaced by services and mapped
// to HTTP statuses by handlers.
package apperr

import "errors"

var (
	// ErrValidation marks malformed or contradictory input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an entity that is absent or outside the caller's
	// visible scope.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an entity the caller can see but not write.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated marks a missing or invalid token.
	ErrUnauthenticated = errors.New("unauthenticated")
)
