package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMissingFiles(t *testing.T) {
	// An explicit path must exist.
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	// The implicit default file is optional.
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Paths.StagingDir, cfg.Paths.StagingDir)
	require.Equal(t, "<defaults>", cfg.Source)
	require.Equal(t, 1, cfg.Capture.FPS)
	require.Equal(t, 9, cfg.Capture.BatchCapacity)
}

func TestLoadParsesOverrides(t *testing.T) {
	path := writeConfig(t, `
paths:
  staging_dir: /var/lib/localguard
auth:
  endpoint: https://auth.example.com/r1/cstore-auth
capture:
  fps: 2
  batch_capacity: 9
upload:
  endpoint: https://upload.example.com/r1/mosaics
  max_retries: 5
  base_delay_ms: 100
  max_delay_ms: 2000
  jitter_ms: 0
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/localguard", cfg.Paths.StagingDir)
	require.Equal(t, "https://auth.example.com/r1/cstore-auth", cfg.Auth.Endpoint)
	require.Equal(t, 2, cfg.Capture.FPS)
	require.Equal(t, 5, cfg.Upload.MaxRetries)
	require.Equal(t, 100, cfg.Upload.BaseDelayMS)
	require.Equal(t, 0, cfg.Upload.JitterMS)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Format)
	require.Equal(t, path, cfg.Source)
}

func TestLoadFillsOmittedSectionsWithDefaults(t *testing.T) {
	path := writeConfig(t, `
capture:
  fps: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Capture.FPS)
	require.Equal(t, Default().Capture.BatchCapacity, cfg.Capture.BatchCapacity)
	require.Equal(t, Default().Upload.Endpoint, cfg.Upload.Endpoint)
	require.Equal(t, Default().Logging.Level, cfg.Logging.Level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
capture:
  frames_per_second: 3
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "blank staging dir", mutate: func(c *Config) { c.Paths.StagingDir = " " }},
		{name: "blank auth endpoint", mutate: func(c *Config) { c.Auth.Endpoint = "" }},
		{name: "blank upload endpoint", mutate: func(c *Config) { c.Upload.Endpoint = "" }},
		{name: "zero fps", mutate: func(c *Config) { c.Capture.FPS = 0 }},
		{name: "zero batch capacity", mutate: func(c *Config) { c.Capture.BatchCapacity = 0 }},
		{name: "negative retries", mutate: func(c *Config) { c.Upload.MaxRetries = -1 }},
		{name: "zero base delay", mutate: func(c *Config) { c.Upload.BaseDelayMS = 0 }},
		{name: "max below base", mutate: func(c *Config) { c.Upload.BaseDelayMS = 100; c.Upload.MaxDelayMS = 10 }},
		{name: "negative jitter", mutate: func(c *Config) { c.Upload.JitterMS = -1 }},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	level, err := NormalizeLogLevel(" WARNING ")
	require.NoError(t, err)
	require.Equal(t, "warn", level)

	level, err = NormalizeLogLevel("")
	require.NoError(t, err)
	require.Equal(t, "info", level)

	_, err = NormalizeLogLevel("verbose")
	require.Error(t, err)
}

func TestNormalizeFormat(t *testing.T) {
	format, err := NormalizeFormat("TEXT")
	require.NoError(t, err)
	require.Equal(t, "console", format)

	format, err = NormalizeFormat("")
	require.NoError(t, err)
	require.Equal(t, "json", format)

	_, err = NormalizeFormat("yaml")
	require.Error(t, err)
}
