package profile

import "errors"

// Extraction failure classes. Only ErrInvalidInput is ever returned as an
// error from an extraction run; the others describe warnings.
var (
	// ErrNotFound means no rule matched a field.
	ErrNotFound = errors.New("not found")

	// ErrMalformed means a rule matched but the captured value was rejected.
	ErrMalformed = errors.New("malformed value")

	// ErrStructuralDrift means a whole section container is missing.
	ErrStructuralDrift = errors.New("section container missing")

	// ErrAggregateIncomplete means extraction produced no substantive content,
	// usually because the source page was blocked or unauthenticated.
	ErrAggregateIncomplete = errors.New("no meaningful profile data")

	// ErrInvalidInput means the call itself was unusable (e.g. empty main document).
	ErrInvalidInput = errors.New("invalid input")
)
