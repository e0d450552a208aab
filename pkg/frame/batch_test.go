package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testFrame(t *testing.T, screenID string, width, height int, capturedAtMS int64, fill byte) Frame {
	t.Helper()
	rgba := make([]byte, width*height*4)
	for i := range rgba {
		rgba[i] = fill
	}
	f, err := NewFrame(screenID, width, height, capturedAtMS, rgba)
	require.NoError(t, err)
	return f
}

func TestNewFrameRejectsShapeMismatch(t *testing.T) {
	_, err := NewFrame("display-1", 2, 2, 0, make([]byte, 15))

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	require.Equal(t, 16, shapeErr.Expected)
	require.Equal(t, 15, shapeErr.Actual)
}

func TestNewFrameRejectsNonPositiveDimensions(t *testing.T) {
	_, err := NewFrame("display-1", 0, 2, 0, nil)
	require.ErrorIs(t, err, ErrBatchInvariant)

	_, err = NewFrame("display-1", 2, -1, 0, nil)
	require.ErrorIs(t, err, ErrBatchInvariant)
}

func TestNewBatchRejectsZeroCapacity(t *testing.T) {
	_, err := NewBatch(0)
	require.ErrorIs(t, err, ErrZeroCapacity)

	_, err = NewBatch(-3)
	require.ErrorIs(t, err, ErrZeroCapacity)
}

func TestBatchEmitsFullSetAtCapacityAndResets(t *testing.T) {
	batch, err := NewBatch(9)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		full, err := batch.Push(testFrame(t, "display-1", 2, 2, int64(i), byte(i)))
		require.NoError(t, err)
		require.Nil(t, full)
		require.Equal(t, i+1, batch.Len())
	}

	full, err := batch.Push(testFrame(t, "display-1", 2, 2, 8, 8))
	require.NoError(t, err)
	require.Len(t, full, 9)
	require.True(t, batch.IsEmpty())

	// Emitted set preserves push order.
	for i, f := range full {
		require.Equal(t, int64(i), f.CapturedAtMS)
	}

	// The buffer is reusable after draining.
	full, err = batch.Push(testFrame(t, "display-1", 2, 2, 9, 9))
	require.NoError(t, err)
	require.Nil(t, full)
	require.Equal(t, 1, batch.Len())
}

func TestBatchRejectsMismatchedFrameWithoutMutation(t *testing.T) {
	batch, err := NewBatch(9)
	require.NoError(t, err)

	_, err = batch.Push(testFrame(t, "display-1", 2, 2, 0, 0))
	require.NoError(t, err)

	_, err = batch.Push(testFrame(t, "display-2", 2, 2, 1, 1))
	require.ErrorIs(t, err, ErrBatchInvariant)
	require.Equal(t, 1, batch.Len())

	_, err = batch.Push(testFrame(t, "display-1", 4, 2, 2, 2))
	require.ErrorIs(t, err, ErrBatchInvariant)
	require.Equal(t, 1, batch.Len())
}

func TestBatchDrainCadence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 16).Draw(t, "capacity")
		pushes := rapid.IntRange(0, 64).Draw(t, "pushes")

		batch, err := NewBatch(capacity)
		if err != nil {
			t.Fatalf("new batch: %v", err)
		}

		rgba := make([]byte, 4)
		emitted := 0
		for i := 0; i < pushes; i++ {
			f, err := NewFrame("display-1", 1, 1, int64(i), rgba)
			if err != nil {
				t.Fatalf("new frame: %v", err)
			}
			full, err := batch.Push(f)
			if err != nil {
				t.Fatalf("push: %v", err)
			}
			if full != nil {
				if len(full) != capacity {
					t.Fatalf("drained %d frames, want %d", len(full), capacity)
				}
				emitted++
			}
		}

		if emitted != pushes/capacity {
			t.Fatalf("emitted %d full sets for %d pushes at capacity %d", emitted, pushes, capacity)
		}
		if batch.Len() != pushes%capacity {
			t.Fatalf("buffered %d frames, want %d", batch.Len(), pushes%capacity)
		}
	})
}
