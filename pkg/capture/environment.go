package capture

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted at runtime.
const (
	// EnvCaptureEnabled is the kill switch: 0, false, or off (any case)
	// disables capture; any other value, or absence, enables it.
	EnvCaptureEnabled = "LOCALGUARD_CAPTURE_ENABLED"
	// EnvCaptureFPS overrides the configured capture frame rate.
	EnvCaptureFPS = "LOCALGUARD_CAPTURE_FPS"
)

// DefaultFPS is the fallback frame rate when no valid override exists.
const DefaultFPS = 1

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// EnabledFromEnv evaluates the capture kill switch.
func EnabledFromEnv(lookup LookupEnvFunc) bool {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(EnvCaptureEnabled)
	if !ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "off":
		return false
	default:
		return true
	}
}

// FPSFromEnv resolves the capture frame rate from the environment, falling
// back when the variable is absent, malformed, or non-positive.
func FPSFromEnv(lookup LookupEnvFunc, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultFPS
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(EnvCaptureFPS)
	if !ok {
		return fallback
	}
	fps, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || fps <= 0 {
		return fallback
	}
	return fps
}
