package apperrors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrIllegalTransition     = errors.New("illegal order transition")
	ErrOrderLocked           = errors.New("order is leased by another worker")
	ErrStaleMatrix           = errors.New("preflight matrix is stale for this draft")
)
