package service

import "errors"

// Sentinel errors mapped by transport layers to response codes.
var (
	// ErrNotFound indicates the configuration, version, or subscription does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller does not own the configuration.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a duplicate name or a stale concurrency token.
	// Callers recover by re-reading and retrying.
	ErrConflict = errors.New("conflict")
)

// ValidationError indicates invalid user input.
// Transport layers map this to 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
