package upload

import (
	"context"
	"errors"
)

// FailureClass buckets upload failures for retry decisions. There are exactly
// two buckets; nothing else drives the retry loop.
type FailureClass string

const (
	// Retriable failures (server errors, timeouts, transient transport
	// faults) are retried up to the policy bound.
	Retriable FailureClass = "retriable"
	// Permanent failures (client errors, cancellation) are surfaced
	// immediately without further attempts.
	Permanent FailureClass = "permanent"
)

// Classify maps a transport failure into its retry bucket. 4xx statuses are
// permanent, 5xx and timeouts retriable; unrecognised transport faults are
// treated as transient network conditions.
func Classify(err error) FailureClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Permanent
	}

	var status *StatusError
	if errors.As(err, &status) {
		if status.Code >= 400 && status.Code < 500 {
			return Permanent
		}
		return Retriable
	}

	return Retriable
}
