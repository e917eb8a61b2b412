package insight

import "errors"

var (
	// ErrSourceUnavailable: the event source could not be reached or
	// returned malformed data. Retryable; nothing was written.
	ErrSourceUnavailable = errors.New("event source unavailable")

	// ErrPersistenceFailure: the insight store rejected the write after a
	// successful computation. Retryable; aggregation is idempotent.
	ErrPersistenceFailure = errors.New("insight store write failed")

	// ErrInvalidWindow: window or date parameters outside the supported range.
	ErrInvalidWindow = errors.New("invalid window")
)
