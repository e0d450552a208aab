package worker

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/localguard/localguard/pkg/frame"
)

// DefaultJPEGQuality matches the aggressive compression used for staged
// mosaic artifacts; the mosaic is an analysis input, not a display asset.
const DefaultJPEGQuality = 9

// StagedArtifacts names the files written for one prepared batch.
type StagedArtifacts struct {
	JPEGPath string
	JSONPath string
	JPEGSize int
	JSONSize int
}

// stagedPayload is the JSON document written alongside the JPEG artifact.
type stagedPayload struct {
	SchemaVersion    string              `json:"schema_version"`
	Metadata         frame.BatchMetadata `json:"metadata"`
	MosaicWidth      int                 `json:"mosaic_width"`
	MosaicHeight     int                 `json:"mosaic_height"`
	MosaicFormat     string              `json:"mosaic_format"`
	MosaicColorSpace string              `json:"mosaic_color_space"`
	MosaicQuality    int                 `json:"mosaic_jpeg_quality"`
	MosaicJPEG       string              `json:"mosaic_jpeg_base64"`
}

// Stager writes prepared payloads under the run's uploads directory.
type Stager struct {
	Dir     string
	Quality int
	Clock   func() time.Time
}

// Stage encodes the mosaic as JPEG and writes the image plus a JSON
// descriptor using compact UTC timestamp names.
func (s Stager) Stage(payload frame.MosaicPayload) (StagedArtifacts, error) {
	quality := s.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return StagedArtifacts{}, fmt.Errorf("create uploads directory: %w", err)
	}

	jpegBytes, err := encodeMosaicJPEG(payload, quality)
	if err != nil {
		return StagedArtifacts{}, err
	}

	stamp := clock().UTC().Format("20060102_150405")
	jpegPath := filepath.Join(s.Dir, stamp+"_mosaic.jpg")
	jsonPath := filepath.Join(s.Dir, stamp+"_payload.json")

	if err := os.WriteFile(jpegPath, jpegBytes, 0o644); err != nil {
		return StagedArtifacts{}, fmt.Errorf("write jpeg artifact: %w", err)
	}

	doc := stagedPayload{
		SchemaVersion:    payload.SchemaVersion,
		Metadata:         payload.Metadata,
		MosaicWidth:      payload.MosaicWidth,
		MosaicHeight:     payload.MosaicHeight,
		MosaicFormat:     "jpeg",
		MosaicColorSpace: "RGB",
		MosaicQuality:    quality,
		MosaicJPEG:       base64.StdEncoding.EncodeToString(jpegBytes),
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return StagedArtifacts{}, fmt.Errorf("encode payload descriptor: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonBytes, 0o644); err != nil {
		return StagedArtifacts{}, fmt.Errorf("write payload descriptor: %w", err)
	}

	return StagedArtifacts{
		JPEGPath: jpegPath,
		JSONPath: jsonPath,
		JPEGSize: len(jpegBytes),
		JSONSize: len(jsonBytes),
	}, nil
}

func encodeMosaicJPEG(payload frame.MosaicPayload, quality int) ([]byte, error) {
	expected := payload.MosaicWidth * payload.MosaicHeight * 4
	if payload.MosaicWidth <= 0 || payload.MosaicHeight <= 0 || len(payload.MosaicRGBA) != expected {
		return nil, fmt.Errorf("mosaic buffer %d bytes does not match %dx%d RGBA",
			len(payload.MosaicRGBA), payload.MosaicWidth, payload.MosaicHeight)
	}

	img := image.NewRGBA(image.Rect(0, 0, payload.MosaicWidth, payload.MosaicHeight))
	copy(img.Pix, payload.MosaicRGBA)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode mosaic jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
