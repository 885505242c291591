package domain

import "errors"

// Error taxonomy surfaced to API clients. Handlers map these to HTTP
// statuses; anything downstream (driver errors, SQL diagnostics) is logged
// server-side and collapsed into ErrInternal before it crosses the handler
// boundary.
var (
	// ErrUnauthenticated means the bearer credential is missing or invalid (401).
	ErrUnauthenticated = errors.New("authentication required")

	// ErrBadRequest means a required field or header is missing or malformed (400).
	ErrBadRequest = errors.New("invalid request")

	// ErrForbidden means the caller is authenticated but not permitted:
	// wrong tenant or insufficient role (403).
	ErrForbidden = errors.New("access denied")

	// ErrNotFound means the requested row does not exist within the caller's
	// tenant scope (404).
	ErrNotFound = errors.New("not found")

	// ErrInternal means a downstream store or provider failure (500).
	ErrInternal = errors.New("internal error")
)
