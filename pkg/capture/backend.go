// Package capture provides display enumeration and frame acquisition
// abstractions plus the FPS and kill-switch configuration that schedules
// them. Concrete pixel backends are external collaborators; this package
// defines the capability set they must satisfy and ships a deterministic
// synthetic implementation for tests and offline runs.
package capture

import (
	"errors"
	"fmt"

	"github.com/localguard/localguard/pkg/frame"
)

// DisplayInfo describes one available display.
type DisplayInfo struct {
	ID     string
	Name   string
	Width  int
	Height int
}

// Backend is the capability set consumed by the capture worker.
type Backend interface {
	// ListDisplays enumerates available displays.
	ListDisplays() []DisplayInfo
	// CaptureFrame grabs one frame from the selected display, stamping it
	// with the supplied capture time.
	CaptureFrame(displayID string, capturedAtMS int64) (frame.Frame, error)
}

// ErrInvalidFPS indicates a non-positive frame rate.
var ErrInvalidFPS = errors.New("invalid fps: must be greater than zero")

// UnknownDisplayError reports a display id the backend does not know.
type UnknownDisplayError struct {
	ID string
}

func (e *UnknownDisplayError) Error() string {
	return fmt.Sprintf("unknown display: %s", e.ID)
}

// BackendError wraps a runtime failure inside a capture backend.
type BackendError struct {
	Reason string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture backend failure: %s: %v", e.Reason, e.Err)
	}
	return "capture backend failure: " + e.Reason
}

func (e *BackendError) Unwrap() error { return e.Err }

// SelectDisplay finds a display by id in an enumerated list.
func SelectDisplay(displays []DisplayInfo, displayID string) (DisplayInfo, bool) {
	for _, display := range displays {
		if display.ID == displayID {
			return display, true
		}
	}
	return DisplayInfo{}, false
}
