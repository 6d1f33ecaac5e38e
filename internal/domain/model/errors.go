package model

import "errors"

// Error kinds returned by the catalog core. Adapters and services wrap these
// with fmt.Errorf("...: %w", ...) so callers can branch with errors.Is while
// keeping the operation detail in the message.
var (
	// ErrCredential indicates missing or invalid client configuration
	// (e.g. no client id/secret available at renewal time).
	ErrCredential = errors.New("credential configuration invalid")

	// ErrUpstream indicates a non-2xx response or a transport failure
	// (including timeout) on any upstream API call.
	ErrUpstream = errors.New("upstream request failed")

	// ErrValidation indicates a malformed upstream payload, such as an
	// unrecognized release date precision or a missing required field.
	ErrValidation = errors.New("upstream payload invalid")

	// ErrConflict indicates a uniqueness violation that could not be
	// resolved by re-fetching the existing row.
	ErrConflict = errors.New("conflicting catalog state")

	// ErrStorage indicates a database or transaction failure.
	ErrStorage = errors.New("storage failure")
)
