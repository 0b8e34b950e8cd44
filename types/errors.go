package types

import "errors"

// Failure taxonomy. Components wrap these with %w so callers can classify
// with errors.Is at the batch boundary.
var (
	// ErrValidation — spec field out of bounds or malformed. Caught before
	// any side effect.
	ErrValidation = errors.New("validation failed")

	// ErrConflict — VM name or disk path already exists. Caught before any
	// allocating action.
	ErrConflict = errors.New("resource already exists")

	// ErrTransport — media download or endpoint reachability failure.
	ErrTransport = errors.New("transport failure")

	// ErrContentShape — an expected artifact (boot files inside the media,
	// a required template placeholder) was not found where the profile says
	// it should be.
	ErrContentShape = errors.New("unexpected content shape")

	// ErrStuck — install still running but disk activity ceased for longer
	// than the stuck threshold. Check network/config delivery.
	ErrStuck = errors.New("install stuck")

	// ErrTimeout — install did not reach a terminal state within the overall
	// monitor timeout. Check install duration expectations.
	ErrTimeout = errors.New("install timed out")

	// ErrCrashed — the hypervisor reported the domain crashed.
	ErrCrashed = errors.New("domain crashed")

	// ErrNotFound — the domain disappeared from the hypervisor.
	ErrNotFound = errors.New("domain not found")
)
