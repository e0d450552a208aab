package frame

import (
	"encoding/json"
	"fmt"
)

// SchemaVersionV1 is the canonical schema tag for v1 mosaic payloads.
const SchemaVersionV1 = "v1"

// MosaicPayload is the versioned payload sent to the protected ingest API.
// Its serialized content is the identity used for upload idempotency.
type MosaicPayload struct {
	SchemaVersion string        `json:"schema_version"`
	Metadata      BatchMetadata `json:"metadata"`
	MosaicWidth   int           `json:"mosaic_width"`
	MosaicHeight  int           `json:"mosaic_height"`
	MosaicRGBA    []byte        `json:"mosaic_rgba"`
}

// EncodeJSON serializes the payload to compact JSON bytes.
func (p MosaicPayload) EncodeJSON() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode mosaic payload: %w", err)
	}
	return data, nil
}

// DecodeJSON deserializes a payload from JSON bytes.
func DecodeJSON(raw []byte) (MosaicPayload, error) {
	var payload MosaicPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return MosaicPayload{}, fmt.Errorf("decode mosaic payload: %w", err)
	}
	return payload, nil
}
