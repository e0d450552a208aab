// Package mosaic composes deterministic temporal 3x3 mosaics from completed
// frame batches. Composition only rearranges existing frame pixels; nothing
// is resampled or blended.
package mosaic

import (
	"errors"
	"fmt"

	"github.com/localguard/localguard/pkg/frame"
)

// FrameCount is the required frame count for one 3x3 temporal mosaic.
const FrameCount = 9

const gridSide = 3

// ErrGeometryMismatch indicates the input frames do not share one geometry.
var ErrGeometryMismatch = errors.New("all frames in a batch must share the same geometry")

// ErrDimensionOverflow indicates the output dimensions overflow integer range.
var ErrDimensionOverflow = errors.New("mosaic dimension overflow")

// FrameCountError reports an input batch of the wrong size.
type FrameCountError struct {
	Expected int
	Actual   int
}

func (e *FrameCountError) Error() string {
	return fmt.Sprintf("invalid frame count: expected %d, got %d", e.Expected, e.Actual)
}

// Image is the mosaic produced from one chronological frame batch.
type Image struct {
	Width  int
	Height int
	RGBA   []byte
}

// Compose builds a 3x3 temporal mosaic from exactly nine frames in ascending
// capture order. Frame i lands in grid cell (row i/3, col i%3), so frame 0 is
// the top-left tile and frame 8 the bottom-right. Inputs are never mutated.
func Compose(frames []frame.Frame) (Image, error) {
	if len(frames) != FrameCount {
		return Image{}, &FrameCountError{Expected: FrameCount, Actual: len(frames)}
	}

	tileWidth := frames[0].Width
	tileHeight := frames[0].Height
	for _, f := range frames {
		if f.Width != tileWidth || f.Height != tileHeight {
			return Image{}, ErrGeometryMismatch
		}
	}

	mosaicWidth := tileWidth * gridSide
	mosaicHeight := tileHeight * gridSide
	if mosaicWidth/gridSide != tileWidth || mosaicHeight/gridSide != tileHeight {
		return Image{}, ErrDimensionOverflow
	}
	pixels := mosaicWidth * mosaicHeight
	if mosaicWidth != 0 && pixels/mosaicWidth != mosaicHeight {
		return Image{}, ErrDimensionOverflow
	}
	length := pixels * 4
	if length/4 != pixels {
		return Image{}, ErrDimensionOverflow
	}

	rgba := make([]byte, length)
	rowLen := tileWidth * 4
	for i, f := range frames {
		tileRow := i / gridSide
		tileCol := i % gridSide
		for y := 0; y < tileHeight; y++ {
			src := y * rowLen
			dstY := tileRow*tileHeight + y
			dstX := tileCol * tileWidth
			dst := (dstY*mosaicWidth + dstX) * 4
			copy(rgba[dst:dst+rowLen], f.RGBA[src:src+rowLen])
		}
	}

	return Image{Width: mosaicWidth, Height: mosaicHeight, RGBA: rgba}, nil
}
