package upload

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/localguard/localguard/pkg/frame"
)

// IdempotencyKey derives a stable fingerprint from the payload's serialized
// content (schema version, metadata, and mosaic bytes). Identical content
// always yields the identical key, letting the server side de-duplicate
// retried sends.
func IdempotencyKey(payload frame.MosaicPayload) (string, error) {
	data, err := payload.EncodeJSON()
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
