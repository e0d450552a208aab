// Package pipeline joins the capture-side building blocks: it turns a
// drained frame batch into an upload payload and maps analysis service
// responses into risk signals.
package pipeline

import (
	"fmt"

	"github.com/localguard/localguard/pkg/analysis"
	"github.com/localguard/localguard/pkg/frame"
	"github.com/localguard/localguard/pkg/mosaic"
)

// BatchToPayload composes the mosaic for a full frame set and wraps it with
// batch metadata into a versioned upload payload.
func BatchToPayload(frames []frame.Frame, sessionID string) (frame.MosaicPayload, error) {
	img, err := mosaic.Compose(frames)
	if err != nil {
		return frame.MosaicPayload{}, fmt.Errorf("compose mosaic: %w", err)
	}

	meta, err := frame.BuildMetadata(frames, sessionID)
	if err != nil {
		return frame.MosaicPayload{}, fmt.Errorf("build metadata: %w", err)
	}

	return frame.MosaicPayload{
		SchemaVersion: frame.SchemaVersionV1,
		Metadata:      meta,
		MosaicWidth:   img.Width,
		MosaicHeight:  img.Height,
		MosaicRGBA:    img.RGBA,
	}, nil
}

// ParseAnalysis decodes a raw analysis response and maps its category
// assessments onto risk signals.
func ParseAnalysis(raw []byte) ([]analysis.RiskSignal, error) {
	resp, err := analysis.Parse(raw)
	if err != nil {
		return nil, err
	}
	return analysis.MapRiskSignals(resp), nil
}
