// Package staging manages the on-disk layout for a monitoring run:
// the artifact directory for prepared mosaics, the upload spool, and a
// durable session manifest describing what happened during the run.
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SchemaVersion captures the manifest version for compatibility checks.
const SchemaVersion = 1

// Layout represents the absolute filesystem locations for a run.
type Layout struct {
	Root         string
	ManifestPath string
	RunLogPath   string
	ArtifactsDir string
	UploadsDir   string
}

// Paths holds the relative locations stored in the manifest for portability.
type Paths struct {
	Root      string `json:"root"`
	Manifest  string `json:"manifest"`
	RunLog    string `json:"run_log"`
	Artifacts string `json:"artifacts"`
	Uploads   string `json:"uploads"`
}

// CaptureSettings records the capture parameters active for the run.
type CaptureSettings struct {
	FPS           int    `json:"fps"`
	BatchCapacity int    `json:"batch_capacity"`
	DisplayID     string `json:"display_id,omitempty"`
}

// BatchRecord describes one mosaic batch prepared during the run.
type BatchRecord struct {
	FrameCount   int       `json:"frame_count"`
	JPEGPath     string    `json:"jpeg_path"`
	JSONPath     string    `json:"json_path"`
	PreparedAt   time.Time `json:"prepared_at"`
	MosaicWidth  int       `json:"mosaic_width"`
	MosaicHeight int       `json:"mosaic_height"`
}

// UploadRecord describes the outcome of one upload attempt sequence.
type UploadRecord struct {
	RequestID      string    `json:"request_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	Attempts       int       `json:"attempts"`
	Succeeded      bool      `json:"succeeded"`
	Error          string    `json:"error,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Status summarises the lifecycle of a run.
type Status struct {
	State     string     `json:"state"`
	Summary   string     `json:"summary,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Run lifecycle states stored in manifests for downstream tooling.
const (
	RunStatePending   = "pending"
	RunStateCapturing = "capturing"
	RunStateCompleted = "completed"
	RunStateErrored   = "error"
)

// Manifest is the durable metadata describing a monitoring run.
type Manifest struct {
	SchemaVersion int             `json:"schema_version"`
	RunID         string          `json:"run_id"`
	SessionID     string          `json:"session_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Hostname      string          `json:"hostname"`
	AppVersion    string          `json:"app_version"`
	Capture       CaptureSettings `json:"capture"`
	Paths         Paths           `json:"paths"`
	Batches       []BatchRecord   `json:"batches,omitempty"`
	Uploads       []UploadRecord  `json:"uploads,omitempty"`
	Status        Status          `json:"status"`
}

// Options captures the knobs for creating a new manifest.
type Options struct {
	RunID      string
	CreatedAt  time.Time
	Hostname   string
	AppVersion string
	Capture    CaptureSettings
	Layout     Layout
}

// New constructs a manifest using the supplied options.
func New(opts Options) Manifest {
	return Manifest{
		SchemaVersion: SchemaVersion,
		RunID:         opts.RunID,
		CreatedAt:     opts.CreatedAt.UTC(),
		Hostname:      opts.Hostname,
		AppVersion:    opts.AppVersion,
		Capture:       opts.Capture,
		Paths:         opts.Layout.RelativePaths(),
		Status:        Status{State: RunStatePending},
	}
}

// BuildLayout creates an absolute filesystem layout for a run.
func BuildLayout(stagingDir, runID string) Layout {
	root := filepath.Join(stagingDir, runID)
	return Layout{
		Root:         root,
		ManifestPath: filepath.Join(root, "session.json"),
		RunLogPath:   filepath.Join(root, "run.log"),
		ArtifactsDir: filepath.Join(root, "artifacts"),
		UploadsDir:   filepath.Join(root, "uploads"),
	}
}

// RelativePaths exposes the manifest-friendly relative paths for the layout.
func (l Layout) RelativePaths() Paths {
	return Paths{
		Root:      ".",
		Manifest:  filepath.Base(l.ManifestPath),
		RunLog:    filepath.Base(l.RunLogPath),
		Artifacts: filepath.Base(l.ArtifactsDir),
		Uploads:   filepath.Base(l.UploadsDir),
	}
}

// EnsureFilesystem prepares the directory tree for a run layout.
func EnsureFilesystem(layout Layout) error {
	if err := os.MkdirAll(layout.Root, 0o755); err != nil {
		return fmt.Errorf("create run root: %w", err)
	}

	for _, dir := range []string{layout.ArtifactsDir, layout.UploadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	file, err := os.OpenFile(layout.RunLogPath, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("initialise run log: %w", err)
	}
	defer file.Close()

	return nil
}

// Save writes the manifest JSON to disk with indentation for readability.
func Save(man Manifest, path string) error {
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Load reads a manifest JSON file from disk.
func Load(path string) (Manifest, error) {
	var man Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return man, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &man); err != nil {
		return man, fmt.Errorf("decode manifest: %w", err)
	}
	return man, nil
}

// ResolveRunID chooses a run identifier derived from the timestamp and avoids collisions.
func ResolveRunID(stagingDir string, now time.Time) (string, error) {
	if strings.TrimSpace(stagingDir) == "" {
		return "", errors.New("staging directory must not be empty")
	}

	base := now.UTC().Format("20060102_150405")
	candidate := base
	suffix := 1
	for {
		_, err := os.Stat(filepath.Join(stagingDir, candidate))
		if err == nil {
			candidate = fmt.Sprintf("%s_%02d", base, suffix)
			suffix++
			continue
		}
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("inspect staging directory: %w", err)
		}
	}
}
