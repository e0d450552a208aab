package frame

// Batch is a bounded buffer that emits complete frame sets. The first frame
// establishes the display/geometry contract for the batch; every later push
// must match it. A batch belongs to exactly one goroutine at a time.
type Batch struct {
	capacity int
	frames   []Frame
}

// NewBatch creates a bounded batch buffer.
func NewBatch(capacity int) (*Batch, error) {
	if capacity <= 0 {
		return nil, ErrZeroCapacity
	}
	return &Batch{
		capacity: capacity,
		frames:   make([]Frame, 0, capacity),
	}, nil
}

// Push adds one frame to the buffer. When the push fills the buffer to
// capacity, the full ordered frame set is returned and the buffer resets to
// empty; otherwise the returned slice is nil. A frame that does not match the
// seeded display or geometry fails without mutating the buffer.
func (b *Batch) Push(f Frame) ([]Frame, error) {
	if len(b.frames) > 0 {
		first := b.frames[0]
		if first.ScreenID != f.ScreenID || first.Width != f.Width || first.Height != f.Height {
			return nil, newInvariantError("frame does not match active batch display or geometry")
		}
	}

	b.frames = append(b.frames, f)
	if len(b.frames) == b.capacity {
		emitted := b.frames
		b.frames = make([]Frame, 0, b.capacity)
		return emitted, nil
	}
	return nil, nil
}

// Len reports the current buffered frame count.
func (b *Batch) Len() int { return len(b.frames) }

// Capacity reports the configured batch capacity.
func (b *Batch) Capacity() int { return b.capacity }

// IsEmpty reports whether no frames are buffered.
func (b *Batch) IsEmpty() bool { return len(b.frames) == 0 }
