package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultFileName = "config.yaml"

// Config captures the user-adjustable knobs for the monitoring agent.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Auth    AuthConfig    `yaml:"auth"`
	Capture CaptureConfig `yaml:"capture"`
	Upload  UploadConfig  `yaml:"upload"`
	Logging LoggingConfig `yaml:"logging"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-"`
}

// PathsConfig controls filesystem locations used by the CLI.
type PathsConfig struct {
	StagingDir string `yaml:"staging_dir"`
}

// AuthConfig points at the authentication service.
type AuthConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// CaptureConfig sets the capture cadence and batching.
type CaptureConfig struct {
	FPS           int `yaml:"fps"`
	BatchCapacity int `yaml:"batch_capacity"`
}

// UploadConfig points at the upload service and tunes the retry policy.
type UploadConfig struct {
	Endpoint    string `yaml:"endpoint"`
	MaxRetries  int    `yaml:"max_retries"`
	BaseDelayMS int    `yaml:"base_delay_ms"`
	MaxDelayMS  int    `yaml:"max_delay_ms"`
	JitterMS    int    `yaml:"jitter_ms"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used when no overrides are supplied.
func Default() Config {
	return Config{
		Paths: PathsConfig{
			StagingDir: "staging",
		},
		Auth: AuthConfig{
			Endpoint: "https://auth.local-guard.test/r1/cstore-auth",
		},
		Capture: CaptureConfig{
			FPS:           1,
			BatchCapacity: 9,
		},
		Upload: UploadConfig{
			Endpoint:    "https://upload.local-guard.test/r1/mosaics",
			MaxRetries:  3,
			BaseDelayMS: 250,
			MaxDelayMS:  5000,
			JitterMS:    100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Source: "<defaults>",
	}
}

// Load reads configuration from disk if present, otherwise returning defaults.
// When path is empty, the loader attempts to read ./config.yaml but tolerates a missing file.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	file, err := os.Open(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must not be empty")
	}
	if strings.TrimSpace(c.Auth.Endpoint) == "" {
		return errors.New("auth.endpoint must not be empty")
	}
	if strings.TrimSpace(c.Upload.Endpoint) == "" {
		return errors.New("upload.endpoint must not be empty")
	}

	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}

	if c.Capture.FPS <= 0 {
		return errors.New("capture.fps must be positive")
	}
	if c.Capture.BatchCapacity <= 0 {
		return errors.New("capture.batch_capacity must be positive")
	}
	if c.Upload.MaxRetries < 0 {
		return errors.New("upload.max_retries must not be negative")
	}
	if c.Upload.BaseDelayMS <= 0 {
		return errors.New("upload.base_delay_ms must be positive")
	}
	if c.Upload.MaxDelayMS < c.Upload.BaseDelayMS {
		return errors.New("upload.max_delay_ms must not be below upload.base_delay_ms")
	}
	if c.Upload.JitterMS < 0 {
		return errors.New("upload.jitter_ms must not be negative")
	}

	return nil
}

func (c *Config) normalize() {
	defaults := Default()

	c.Paths.StagingDir = filepath.Clean(strings.TrimSpace(c.Paths.StagingDir))
	if c.Paths.StagingDir == "." || c.Paths.StagingDir == "" {
		c.Paths.StagingDir = defaults.Paths.StagingDir
	}

	c.Auth.Endpoint = strings.TrimSpace(c.Auth.Endpoint)
	if c.Auth.Endpoint == "" {
		c.Auth.Endpoint = defaults.Auth.Endpoint
	}
	c.Upload.Endpoint = strings.TrimSpace(c.Upload.Endpoint)
	if c.Upload.Endpoint == "" {
		c.Upload.Endpoint = defaults.Upload.Endpoint
	}

	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}

	if c.Capture.FPS <= 0 {
		c.Capture.FPS = defaults.Capture.FPS
	}
	if c.Capture.BatchCapacity <= 0 {
		c.Capture.BatchCapacity = defaults.Capture.BatchCapacity
	}
	if c.Upload.MaxRetries < 0 {
		c.Upload.MaxRetries = defaults.Upload.MaxRetries
	}
	if c.Upload.BaseDelayMS <= 0 {
		c.Upload.BaseDelayMS = defaults.Upload.BaseDelayMS
	}
	if c.Upload.MaxDelayMS <= 0 {
		c.Upload.MaxDelayMS = defaults.Upload.MaxDelayMS
	}
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
