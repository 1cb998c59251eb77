package domain

import "errors"

// Error taxonomy surfaced by services. Handlers map these onto HTTP
// status classes; anything unrecognized becomes a server error.
var (
	// ErrUnauthenticated means the request carried no usable session proof.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized means the caller is known but policy denies the
	// operation. A missing coordinator/leader relation row reports the
	// same error as an explicit deny, so callers cannot probe existence.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness or foreign-key constraint was violated.
	ErrConflict = errors.New("conflict")
	// ErrValidation means the input shape was malformed.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream means a storage or mail collaborator failed.
	ErrUpstream = errors.New("upstream unavailable")
)
