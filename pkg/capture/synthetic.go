package capture

import (
	"sync"

	"github.com/localguard/localguard/pkg/frame"
)

// SyntheticBackend is a deterministic capture backend for tests, CI, and
// offline runs. Each capture fills the frame with an incrementing byte so
// consecutive frames are distinguishable.
type SyntheticBackend struct {
	displays []DisplayInfo

	// The capture method must be callable from any goroutine per the Backend
	// contract, so the sequence counter is lock-protected even though the
	// worker calls it from a single thread in practice.
	mu       sync.Mutex
	sequence uint64
}

// NewSyntheticBackend creates a backend with one default display.
func NewSyntheticBackend() *SyntheticBackend {
	return &SyntheticBackend{
		displays: []DisplayInfo{{
			ID:     "display-1",
			Name:   "Synthetic Display",
			Width:  4,
			Height: 4,
		}},
	}
}

// NewSyntheticBackendWithDisplays creates a backend advertising the supplied
// display list.
func NewSyntheticBackendWithDisplays(displays []DisplayInfo) *SyntheticBackend {
	return &SyntheticBackend{displays: displays}
}

// ListDisplays implements Backend.
func (b *SyntheticBackend) ListDisplays() []DisplayInfo {
	out := make([]DisplayInfo, len(b.displays))
	copy(out, b.displays)
	return out
}

// CaptureFrame implements Backend.
func (b *SyntheticBackend) CaptureFrame(displayID string, capturedAtMS int64) (frame.Frame, error) {
	display, ok := SelectDisplay(b.displays, displayID)
	if !ok {
		return frame.Frame{}, &UnknownDisplayError{ID: displayID}
	}

	b.mu.Lock()
	b.sequence++
	fill := byte(b.sequence % 255)
	b.mu.Unlock()

	rgba := make([]byte, display.Width*display.Height*4)
	for i := range rgba {
		rgba[i] = fill
	}

	captured, err := frame.NewFrame(display.ID, display.Width, display.Height, capturedAtMS, rgba)
	if err != nil {
		return frame.Frame{}, &BackendError{Reason: "synthetic frame construction", Err: err}
	}
	return captured, nil
}
