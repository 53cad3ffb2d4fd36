// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrConflict signals that an operation cannot proceed due
// to existing state (e.g. paying an already-completed purchase).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as paying a purchase that is already
// completed. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when the addressed row does not exist.
// Repositories that surface sql.ErrNoRows directly do not wrap it; this
// sentinel is used where the raw error would be ambiguous (e.g. inside
// a multi-statement transaction).
var ErrNotFound = errors.New("not found")

// ErrEmailExists and ErrUsernameExists report unique-constraint
// violations during registration, mapped to HTTP 409.
var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)
