package frame

import (
	"errors"
	"fmt"
)

// ErrZeroCapacity indicates an attempt to create a batch with no room.
var ErrZeroCapacity = errors.New("batch capacity must be greater than zero")

// ErrEmptyFrameSet indicates metadata or mosaic operations received no frames.
var ErrEmptyFrameSet = errors.New("frame set is empty")

// ErrInvalidSessionID indicates a blank session identifier.
var ErrInvalidSessionID = errors.New("session id is empty")

// ErrBatchInvariant is the sentinel matched by all batch invariant violations.
var ErrBatchInvariant = errors.New("batch invariant violation")

// ShapeError reports a pixel buffer that does not match declared geometry.
type ShapeError struct {
	Expected int
	Actual   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid frame shape: expected %d bytes, got %d", e.Expected, e.Actual)
}

type invariantError struct {
	reason string
}

func (e *invariantError) Error() string {
	return "batch invariant violation: " + e.reason
}

func (e *invariantError) Is(target error) bool {
	return target == ErrBatchInvariant
}

func newInvariantError(reason string) error {
	return &invariantError{reason: reason}
}
