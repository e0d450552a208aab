// Package frame defines the pure data model shared across the capture
// pipeline: validated frames, the bounded frame batch buffer, derived batch
// metadata, and the versioned mosaic upload payload.
package frame

// Frame is one captured RGBA frame from a selected display. The pixel buffer
// is owned by the frame; nothing in this package aliases it across frames.
type Frame struct {
	ScreenID     string
	Width        int
	Height       int
	CapturedAtMS int64
	RGBA         []byte
}

// NewFrame constructs a validated frame. The pixel buffer length must be
// exactly width*height*4; mismatches fail rather than truncate or pad.
func NewFrame(screenID string, width, height int, capturedAtMS int64, rgba []byte) (Frame, error) {
	expected, err := requiredRGBALen(width, height)
	if err != nil {
		return Frame{}, err
	}
	if len(rgba) != expected {
		return Frame{}, &ShapeError{Expected: expected, Actual: len(rgba)}
	}

	return Frame{
		ScreenID:     screenID,
		Width:        width,
		Height:       height,
		CapturedAtMS: capturedAtMS,
		RGBA:         rgba,
	}, nil
}

func requiredRGBALen(width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, newInvariantError("frame dimensions must be positive")
	}
	pixels := width * height
	if pixels/width != height {
		return 0, newInvariantError("frame dimensions overflow")
	}
	length := pixels * 4
	if length/4 != pixels {
		return 0, newInvariantError("rgba length overflow")
	}
	return length, nil
}
