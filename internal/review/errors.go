package review

import "errors"

// Errors returned by the tracker. Callers match them with errors.Is; every
// failure is per-call and recoverable by retrying with corrected input.
var (
	// ErrValidation indicates bad caller input: an unknown session type, a
	// quality rating outside [0, 5], or a review session without a rating.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates that no learning history exists for the
	// requested (user, subject, topic).
	ErrNotFound = errors.New("learning history not found")

	// ErrConflict indicates a concurrent update to the same learning
	// history, or an attempt to initialize an already-tracked topic.
	ErrConflict = errors.New("conflicting update")
)
