package model

import "errors"

// Error taxonomy for the batch and consistency engines. Callers classify
// failures with errors.Is; every error returned by the engines wraps
// exactly one of these sentinels.
var (
	// ErrInvalidArgument marks malformed caller input. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks an unknown session, statement, or case. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an operation that is not valid for the current
	// lifecycle state, such as starting a completed session. Never retried.
	ErrInvalidState = errors.New("invalid state")

	// ErrExtraction marks a per-item extraction failure with an opaque
	// cause. Retried up to the configured bound, then recorded.
	ErrExtraction = errors.New("extraction failed")

	// ErrCapabilityTimeout marks an extraction that ran out of time.
	// Treated exactly like ErrExtraction for retry purposes.
	ErrCapabilityTimeout = errors.New("capability timeout")
)

// IsRetryable reports whether an item-level failure should be retried
func IsRetryable(err error) bool {
	return errors.Is(err, ErrExtraction) || errors.Is(err, ErrCapabilityTimeout)
}
