package upload

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates the transport gave up waiting on the remote side.
var ErrTimeout = errors.New("upload timed out")

// StatusError reports an HTTP-style status returned by the upload transport.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload failed with status %d", e.Code)
}

// EndpointError reports an ingest endpoint that violates transport policy.
type EndpointError struct {
	Reason string
}

func (e *EndpointError) Error() string {
	return "invalid upload endpoint: " + e.Reason
}

// TerminalError is the final upload outcome after retries are exhausted or a
// permanent failure is observed. It carries the attempt count so callers can
// report how much work was spent.
type TerminalError struct {
	Attempts int
	Class    FailureClass
	Err      error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("upload failed after %d attempt(s) (%s): %v", e.Attempts, e.Class, e.Err)
}

func (e *TerminalError) Unwrap() error { return e.Err }
