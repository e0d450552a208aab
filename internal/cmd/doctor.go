package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/localguard/localguard/pkg/auth"
	"github.com/localguard/localguard/pkg/capture"
	"github.com/localguard/localguard/pkg/pipeline"
)

func newDoctorCommand() command {
	return command{
		name:        "doctor",
		description: "Check runtime prerequisites for a capture session",
		run:         runDoctor,
	}
}

func runDoctor(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}

	healthy := true
	report := func(name string, ok bool, detail string) {
		verdict := "ok"
		if !ok {
			verdict = "fail"
			healthy = false
		}
		fmt.Fprintf(stdout, "  [%-4s] %-20s %s\n", verdict, name, detail)
	}

	fmt.Fprintln(stdout, "localguard doctor")

	enabled := capture.EnabledFromEnv(nil)
	report("kill switch", enabled, fmt.Sprintf("%s enabled=%t", capture.EnvCaptureEnabled, enabled))

	fps := capture.FPSFromEnv(nil, ctx.Config.Capture.FPS)
	_, err := capture.NewConfig(fps)
	report("capture fps", err == nil, fmt.Sprintf("resolved fps=%d", fps))

	err = auth.ValidateEndpoint(ctx.Config.Auth.Endpoint)
	detail := ctx.Config.Auth.Endpoint
	if err != nil {
		detail = err.Error()
	}
	report("auth endpoint", err == nil, detail)

	uploadOK := pipeline.IsHTTPSEndpoint(ctx.Config.Upload.Endpoint)
	report("upload endpoint", uploadOK, ctx.Config.Upload.Endpoint)

	report("staging dir", stagingWritable(ctx.Config.Paths.StagingDir), ctx.Config.Paths.StagingDir)

	if !healthy {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Fprintln(stdout, "All checks passed.")
	return nil
}

func stagingWritable(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return false
	}
	os.Remove(probe)
	return true
}
