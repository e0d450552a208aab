package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/localguard/localguard/pkg/analysis"
	"github.com/localguard/localguard/pkg/frame"
	"github.com/localguard/localguard/pkg/mosaic"
)

func nineFrames(t *testing.T) []frame.Frame {
	t.Helper()
	frames := make([]frame.Frame, 0, mosaic.FrameCount)
	for i := 0; i < mosaic.FrameCount; i++ {
		rgba := make([]byte, 2*2*4)
		for j := range rgba {
			rgba[j] = byte(i)
		}
		f, err := frame.NewFrame("display-1", 2, 2, int64(i*1000), rgba)
		require.NoError(t, err)
		frames = append(frames, f)
	}
	return frames
}

func TestBatchToPayload(t *testing.T) {
	payload, err := BatchToPayload(nineFrames(t), "session-abc")
	require.NoError(t, err)

	require.Equal(t, frame.SchemaVersionV1, payload.SchemaVersion)
	require.Equal(t, 6, payload.MosaicWidth)
	require.Equal(t, 6, payload.MosaicHeight)
	require.Len(t, payload.MosaicRGBA, 6*6*4)
	require.Equal(t, "session-abc", payload.Metadata.SessionID)
	require.Equal(t, int64(0), payload.Metadata.StartTimestampMS)
	require.Equal(t, int64(8000), payload.Metadata.EndTimestampMS)
	require.Equal(t, mosaic.FrameCount, payload.Metadata.FrameCount)
}

func TestBatchToPayloadRejectsShortBatch(t *testing.T) {
	_, err := BatchToPayload(nineFrames(t)[:8], "session-abc")
	var countErr *mosaic.FrameCountError
	require.ErrorAs(t, err, &countErr)
}

func TestBatchToPayloadRejectsBlankSession(t *testing.T) {
	_, err := BatchToPayload(nineFrames(t), " ")
	require.ErrorIs(t, err, frame.ErrInvalidSessionID)
}

func TestParseAnalysis(t *testing.T) {
	signals, err := ParseAnalysis([]byte(`{
		"schema_version": "v1",
		"request_id": "req-1",
		"categories": [{"category": "phishing", "severity": 33}]
	}`))
	require.NoError(t, err)
	require.Equal(t, []analysis.RiskSignal{{Category: "phishing", Level: analysis.LevelMedium}}, signals)

	_, err = ParseAnalysis([]byte(`{"request_id": "req-1"}`))
	require.Error(t, err)
}

func TestRedactSensitiveMasksSecretMarkers(t *testing.T) {
	redacted := RedactSensitive("authorization=Bearer abc123")
	require.Contains(t, redacted, "<redacted>")
	require.NotContains(t, redacted, "abc123")

	redacted = RedactSensitive("login with password=hunter2 failed")
	require.Equal(t, "login with password=<redacted>", redacted)

	// Case-insensitive match keeps the prefix intact.
	redacted = RedactSensitive("upstream said TOKEN=xyz")
	require.Equal(t, "upstream said token=<redacted>", redacted)

	require.Equal(t, "clean detail", RedactSensitive("clean detail"))
}

func TestIsHTTPSEndpoint(t *testing.T) {
	require.True(t, IsHTTPSEndpoint("https://upload.local-guard.test/r1/mosaics"))
	require.False(t, IsHTTPSEndpoint("http://upload.local-guard.test/r1/mosaics"))
	require.False(t, IsHTTPSEndpoint("not a url at all\x7f"))
	require.False(t, IsHTTPSEndpoint(""))
}
