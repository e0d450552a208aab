// Package buildinfo reports the agent version stamped into a build. Release
// pipelines inject the version with -ldflags; module-aware installs fall back
// to the main module version from the embedded build info.
package buildinfo

import "runtime/debug"

var version = "dev"

// SetVersion overrides the reported agent version. Empty values are ignored
// so an unset ldflags variable cannot blank the version.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// Version returns the agent version recorded in run manifests and CLI output.
func Version() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
