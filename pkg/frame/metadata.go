package frame

import "strings"

// BatchMetadata describes one completed batch window for upload payloads.
// It is always derived from a frame set, never authored directly.
type BatchMetadata struct {
	StartTimestampMS int64  `json:"start_timestamp_ms"`
	EndTimestampMS   int64  `json:"end_timestamp_ms"`
	ScreenID         string `json:"screen_id"`
	SourceWidth      int    `json:"source_width"`
	SourceHeight     int    `json:"source_height"`
	SessionID        string `json:"session_id"`
	FrameCount       int    `json:"frame_count"`
}

// BuildMetadata derives batch metadata from a non-empty, homogeneous frame
// set. Start/end timestamps are the min/max capture times across the set; the
// input is not assumed to be sorted.
func BuildMetadata(frames []Frame, sessionID string) (BatchMetadata, error) {
	if len(frames) == 0 {
		return BatchMetadata{}, ErrEmptyFrameSet
	}
	if strings.TrimSpace(sessionID) == "" {
		return BatchMetadata{}, ErrInvalidSessionID
	}

	first := frames[0]
	start := first.CapturedAtMS
	end := first.CapturedAtMS
	for _, f := range frames {
		if f.ScreenID != first.ScreenID || f.Width != first.Width || f.Height != first.Height {
			return BatchMetadata{}, newInvariantError("metadata cannot be built from mixed display identities or dimensions")
		}
		if f.CapturedAtMS < start {
			start = f.CapturedAtMS
		}
		if f.CapturedAtMS > end {
			end = f.CapturedAtMS
		}
	}

	return BatchMetadata{
		StartTimestampMS: start,
		EndTimestampMS:   end,
		ScreenID:         first.ScreenID,
		SourceWidth:      first.Width,
		SourceHeight:     first.Height,
		SessionID:        sessionID,
		FrameCount:       len(frames),
	}, nil
}

// TileOrder returns the deterministic tile order for a temporal mosaic:
// chronological indices laid out left-to-right, top-to-bottom.
func TileOrder(batchSize int) ([]int, error) {
	if batchSize <= 0 {
		return nil, ErrZeroCapacity
	}
	order := make([]int, batchSize)
	for i := range order {
		order[i] = i
	}
	return order, nil
}
