package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildLayoutPaths(t *testing.T) {
	layout := BuildLayout("/data/staging", "20260314_150926")

	require.Equal(t, "/data/staging/20260314_150926", layout.Root)
	require.Equal(t, filepath.Join(layout.Root, "session.json"), layout.ManifestPath)
	require.Equal(t, filepath.Join(layout.Root, "run.log"), layout.RunLogPath)
	require.Equal(t, filepath.Join(layout.Root, "artifacts"), layout.ArtifactsDir)
	require.Equal(t, filepath.Join(layout.Root, "uploads"), layout.UploadsDir)
}

func TestEnsureFilesystemCreatesTree(t *testing.T) {
	layout := BuildLayout(t.TempDir(), "run-1")
	require.NoError(t, EnsureFilesystem(layout))

	for _, dir := range []string{layout.Root, layout.ArtifactsDir, layout.UploadsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}

	info, err := os.Stat(layout.RunLogPath)
	require.NoError(t, err)
	require.False(t, info.IsDir())
}

func TestManifestRoundTrip(t *testing.T) {
	layout := BuildLayout(t.TempDir(), "run-1")
	require.NoError(t, EnsureFilesystem(layout))

	created := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	manifest := New(Options{
		RunID:      "run-1",
		CreatedAt:  created,
		Hostname:   "workstation-7",
		AppVersion: "v0.3.0",
		Capture:    CaptureSettings{FPS: 1, BatchCapacity: 9, DisplayID: "display-1"},
		Layout:     layout,
	})
	manifest.SessionID = "session-operator"
	manifest.Batches = append(manifest.Batches, BatchRecord{
		FrameCount:   9,
		PreparedAt:   created,
		MosaicWidth:  12,
		MosaicHeight: 12,
	})
	manifest.Uploads = append(manifest.Uploads, UploadRecord{
		RequestID:      "req-1",
		IdempotencyKey: "abc123",
		Attempts:       3,
		Succeeded:      true,
		CompletedAt:    created,
	})
	manifest.Status.State = RunStateCompleted

	require.NoError(t, Save(manifest, layout.ManifestPath))

	loaded, err := Load(layout.ManifestPath)
	require.NoError(t, err)
	require.Equal(t, manifest, loaded)
	require.Equal(t, SchemaVersion, loaded.SchemaVersion)
	require.Equal(t, ".", loaded.Paths.Root)
	require.Equal(t, "session.json", loaded.Paths.Manifest)
}

func TestLoadRejectsMissingOrCorruptManifest(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
}

func TestResolveRunIDAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	first, err := ResolveRunID(dir, now)
	require.NoError(t, err)
	require.Equal(t, "20260314_150926", first)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, first), 0o755))

	second, err := ResolveRunID(dir, now)
	require.NoError(t, err)
	require.Equal(t, "20260314_150926_01", second)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, second), 0o755))

	third, err := ResolveRunID(dir, now)
	require.NoError(t, err)
	require.Equal(t, "20260314_150926_02", third)
}

func TestResolveRunIDRequiresStagingDir(t *testing.T) {
	_, err := ResolveRunID("  ", time.Now())
	require.Error(t, err)
}
