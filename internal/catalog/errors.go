package catalog

import "errors"

// Sentinel errors shared across subsystems.
var (
	// ErrUnauthorized is returned when the backend rejects a request with
	// 401 or 403. Auth failures are not candidate-specific, so the
	// executor aborts the whole candidate loop when it sees one.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSubmitInFlight is returned when a submission is requested while
	// another one for the same form is still running.
	ErrSubmitInFlight = errors.New("submission already in flight")

	// ErrNoCandidates is returned when an operation resolves to an empty
	// candidate list.
	ErrNoCandidates = errors.New("no candidate endpoints")
)
