package domain

import "errors"

var (
	// ErrNotFound is the sentinel for a missing artifact, contributor entry
	// or storage object.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is the sentinel for a failed ownership check.
	ErrForbidden = errors.New("forbidden")
	// ErrIndexCorrupt signals that a stored contributor index value is not a
	// well-formed ID list.
	ErrIndexCorrupt = errors.New("ownership index corrupt")
	// ErrFetchFailed signals that a remote media fetch errored or timed out.
	ErrFetchFailed = errors.New("remote fetch failed")
	// ErrConversionFailed signals that media re-encoding failed.
	ErrConversionFailed = errors.New("media conversion failed")
	// ErrStoreUnavailable signals a transient document-store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
