package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQueryTooShort indicates the sanitised query is below the
	// configured minimum length. Callers translate this into an empty
	// result set rather than a failure.
	ErrQueryTooShort = errors.New("query too short or empty")

	// ErrInvalidFilters indicates a malformed search filter, such as an
	// inverted date range or an unknown content type.
	ErrInvalidFilters = errors.New("invalid filters")

	// ErrAccessDenied indicates a workspace-scoped search was requested
	// for a workspace the requester cannot access at all. Per-item
	// filtering silently omits instead of raising this.
	ErrAccessDenied = errors.New("access denied")

	// ErrShuttingDown indicates the service is closing and no longer
	// accepts work.
	ErrShuttingDown = errors.New("shutting down")
)
