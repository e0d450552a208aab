package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/localguard/localguard/internal/buildinfo"
	"github.com/localguard/localguard/pkg/auth"
	"github.com/localguard/localguard/pkg/capture"
	"github.com/localguard/localguard/pkg/session"
	"github.com/localguard/localguard/pkg/staging"
	"github.com/localguard/localguard/pkg/upload"
)

func newRunCommand() command {
	return command{
		name:        "run",
		description: "Start a monitored capture session",
		configure: func(fs *flag.FlagSet) {
			fs.Bool("plan-only", false, "Print the resolved configuration without starting capture")
			fs.Int("frames", 9, "Number of capture ticks to schedule before stopping (0 = until interrupted)")
			fs.Duration("duration", 0, "Stop after this wall-clock duration (0 = no limit)")
			fs.Bool("consent", false, "Grant explicit capture consent for this session")
			fs.String("username", "operator", "Username for the authentication transport")
			fs.String("password", "synthetic", "Password for the authentication transport")
			fs.String("display", "", "Display id to capture (default: first available)")
		},
		run: runSession,
	}
}

var (
	timeNow      = time.Now
	hostname     = os.Hostname
	manifestSave = staging.Save
)

func runSession(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}

	planOnly := boolFlag(fs, "plan-only")
	ctx.Logger.Info("run command invoked", "plan_only", planOnly, "staging_dir", ctx.Config.Paths.StagingDir, "config_source", ctx.Config.Source)

	if planOnly {
		printRunPlan(ctx, stdout)
		return nil
	}

	if !boolFlag(fs, "consent") {
		return fmt.Errorf("capture consent not granted (pass --consent to proceed)")
	}
	if !capture.EnabledFromEnv(nil) {
		return fmt.Errorf("capture disabled by %s kill switch", capture.EnvCaptureEnabled)
	}

	if err := os.MkdirAll(ctx.Config.Paths.StagingDir, 0o755); err != nil {
		return fmt.Errorf("ensure staging directory: %w", err)
	}

	runID, err := staging.ResolveRunID(ctx.Config.Paths.StagingDir, timeNow())
	if err != nil {
		return fmt.Errorf("resolve run id: %w", err)
	}

	layout := staging.BuildLayout(ctx.Config.Paths.StagingDir, runID)
	if err := staging.EnsureFilesystem(layout); err != nil {
		return fmt.Errorf("prepare run filesystem: %w", err)
	}

	backend := capture.NewSyntheticBackend()
	displays := backend.ListDisplays()
	if len(displays) == 0 {
		return fmt.Errorf("no displays available for capture")
	}
	displayID := stringFlag(fs, "display")
	if displayID == "" {
		displayID = displays[0].ID
	}

	fps := capture.FPSFromEnv(nil, ctx.Config.Capture.FPS)
	cadence, err := capture.NewConfig(fps)
	if err != nil {
		return fmt.Errorf("resolve capture cadence: %w", err)
	}

	authClient, err := auth.NewClient(ctx.Config.Auth.Endpoint, &auth.StaticTransport{})
	if err != nil {
		return fmt.Errorf("auth client init: %w", err)
	}

	ctrl, err := session.NewController(session.ControllerOptions{
		Version:       buildinfo.Version(),
		AuthClient:    authClient,
		Backend:       backend,
		UploadsDir:    layout.UploadsDir,
		BatchCapacity: ctx.Config.Capture.BatchCapacity,
		Clock:         timeNow,
		Logger:        ctx.Logger,
	})
	if err != nil {
		return fmt.Errorf("session controller init: %w", err)
	}
	defer ctrl.Shutdown()

	creds := auth.Credentials{
		Username: stringFlag(fs, "username"),
		Password: stringFlag(fs, "password"),
	}
	if err := ctrl.HandleLogin(creds); err != nil {
		return err
	}

	ctrl.SetConsent(true)
	if err := ctrl.SelectDisplay(displayID); err != nil {
		return fmt.Errorf("select display: %w", err)
	}

	uploader, err := upload.NewClient(upload.Options{
		Endpoint: ctx.Config.Upload.Endpoint,
		Policy: upload.RetryPolicy{
			MaxRetries: ctx.Config.Upload.MaxRetries,
			BaseDelay:  time.Duration(ctx.Config.Upload.BaseDelayMS) * time.Millisecond,
			MaxDelay:   time.Duration(ctx.Config.Upload.MaxDelayMS) * time.Millisecond,
			Jitter:     time.Duration(ctx.Config.Upload.JitterMS) * time.Millisecond,
		},
		Transport: upload.NewScriptedTransport(),
	})
	if err != nil {
		return fmt.Errorf("upload client init: %w", err)
	}

	host, err := hostname()
	if err != nil {
		host = "unknown"
	}

	manifest := staging.New(staging.Options{
		RunID:      runID,
		CreatedAt:  timeNow(),
		Hostname:   host,
		AppVersion: buildinfo.Version(),
		Capture: staging.CaptureSettings{
			FPS:           fps,
			BatchCapacity: ctx.Config.Capture.BatchCapacity,
			DisplayID:     displayID,
		},
		Layout: layout,
	})
	token, _ := ctrl.Token()
	manifest.SessionID = token.SessionID

	if err := manifestSave(manifest, layout.ManifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err := ctrl.StartCapture(); err != nil {
		return err
	}

	// An interrupt stops the scheduler and cancels any in-flight upload
	// retry sequence instead of letting it run to exhaustion.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	started := timeNow().UTC()
	manifest.Status.State = staging.RunStateCapturing
	manifest.Status.Summary = "capture in progress"
	manifest.Status.StartedAt = &started
	if err := manifestSave(manifest, layout.ManifestPath); err != nil {
		return fmt.Errorf("update manifest status: %w", err)
	}

	runErr := driveScheduler(sigCtx, fs, ctx, ctrl, uploader, &manifest, layout, cadence)

	ctrl.StopCapture()
	ctrl.Shutdown()
	recordPrepared(sigCtx, ctx, ctrl, uploader, &manifest)

	ended := timeNow().UTC()
	manifest.Status.EndedAt = &ended
	if runErr != nil {
		manifest.Status.State = staging.RunStateErrored
		manifest.Status.Summary = runErr.Error()
	} else {
		manifest.Status.State = staging.RunStateCompleted
		manifest.Status.Summary = fmt.Sprintf("capture finished (%d batches prepared, %d uploads)", len(manifest.Batches), len(manifest.Uploads))
	}
	if err := manifestSave(manifest, layout.ManifestPath); err != nil {
		if runErr != nil {
			return fmt.Errorf("%v (additionally failed to persist manifest: %w)", runErr, err)
		}
		return fmt.Errorf("finalise manifest: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(stdout, "Prepared run directory: %s\n", layout.Root)
	fmt.Fprintf(stdout, "Manifest: %s\n", layout.ManifestPath)
	fmt.Fprintf(stdout, "Uploads directory: %s\n", layout.UploadsDir)
	fmt.Fprintf(stdout, "Batches prepared: %d\n", len(manifest.Batches))
	fmt.Fprintf(stdout, "Uploads attempted: %d\n", len(manifest.Uploads))
	status := session.ProjectRuntimeStatus(ctrl.State(), nil)
	fmt.Fprintf(stdout, "Final status: capture=%s network=%s upload=%s\n", status.Capture, status.Network, status.Upload)
	return nil
}

// driveScheduler owns the tick loop: it dispatches capture commands with
// backpressure, drains worker events, and uploads every prepared payload.
func driveScheduler(sigCtx context.Context, fs *flag.FlagSet, ctx *AppContext, ctrl *session.Controller, uploader *upload.Client, manifest *staging.Manifest, layout staging.Layout, cadence capture.Config) error {
	targetFrames := intFlag(fs, "frames")
	maxDuration := durationFlag(fs, "duration")

	loopCtx := sigCtx
	if maxDuration > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(sigCtx, maxDuration)
		defer cancel()
	}

	ticker := time.NewTicker(cadence.Interval())
	defer ticker.Stop()

	dispatched := 0
	for {
		select {
		case <-loopCtx.Done():
			ctx.Logger.Info("scheduler stopping", "stage", "capture", "reason", loopCtx.Err().Error(), "dispatched", dispatched)
			return nil
		case <-ticker.C:
			sent, err := ctrl.OnSchedulerTick()
			if err != nil {
				return fmt.Errorf("scheduler tick: %w", err)
			}
			if sent {
				dispatched++
			}

			ctrl.DrainEvents()
			recordPrepared(sigCtx, ctx, ctrl, uploader, manifest)

			if !ctrl.Capturing() {
				return fmt.Errorf("capture degraded; see run log for details")
			}
			if targetFrames > 0 && dispatched >= targetFrames {
				ctx.Logger.Info("scheduler finished", "stage", "capture", "dispatched", dispatched)
				return nil
			}
			if err := manifestSave(*manifest, layout.ManifestPath); err != nil {
				return fmt.Errorf("persist manifest: %w", err)
			}
		}
	}
}

// recordPrepared uploads pending payloads and appends batch and upload
// records to the manifest. The context cancels in-flight retry sequences.
func recordPrepared(uploadCtx context.Context, ctx *AppContext, ctrl *session.Controller, uploader *upload.Client, manifest *staging.Manifest) {
	pending := ctrl.TakePendingUploads()
	if len(pending) == 0 {
		return
	}

	token, _ := ctrl.Token()
	for _, payload := range pending {
		manifest.Batches = append(manifest.Batches, staging.BatchRecord{
			FrameCount:   payload.Metadata.FrameCount,
			PreparedAt:   timeNow().UTC(),
			MosaicWidth:  payload.MosaicWidth,
			MosaicHeight: payload.MosaicHeight,
		})

		report, err := uploader.Upload(uploadCtx, payload, token.AccessToken)
		ctrl.RecordUploadOutcome(err)

		record := staging.UploadRecord{
			RequestID:      report.RequestID,
			IdempotencyKey: report.IdempotencyKey,
			Attempts:       report.Attempts,
			Succeeded:      err == nil,
			CompletedAt:    timeNow().UTC(),
		}
		if err != nil {
			var terminal *upload.TerminalError
			if errors.As(err, &terminal) {
				record.Attempts = terminal.Attempts
			}
			record.Error = err.Error()
			ctx.Logger.Error("payload upload failed", "stage", "upload", "attempts", report.Attempts, "error", err)
		} else {
			ctx.Logger.Info("payload uploaded", "stage", "upload", "attempts", report.Attempts, "request_id", report.RequestID)
		}
		manifest.Uploads = append(manifest.Uploads, record)
	}
}

func printRunPlan(ctx *AppContext, stdout io.Writer) {
	fmt.Fprintf(stdout, "Resolved configuration (source: %s)\n", ctx.Config.Source)
	fmt.Fprintf(stdout, "  staging_dir: %s\n", ctx.Config.Paths.StagingDir)
	fmt.Fprintf(stdout, "  auth.endpoint: %s\n", ctx.Config.Auth.Endpoint)
	fmt.Fprintf(stdout, "  capture.fps: %d\n", ctx.Config.Capture.FPS)
	fmt.Fprintf(stdout, "  capture.batch_capacity: %d\n", ctx.Config.Capture.BatchCapacity)
	fmt.Fprintf(stdout, "  upload.endpoint: %s\n", ctx.Config.Upload.Endpoint)
	fmt.Fprintf(stdout, "  upload.max_retries: %d\n", ctx.Config.Upload.MaxRetries)
	fmt.Fprintf(stdout, "  logging.level: %s\n", ctx.Config.Logging.Level)
	fmt.Fprintf(stdout, "  logging.format: %s\n", ctx.Config.Logging.Format)
}

func boolFlag(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	value, err := strconv.ParseBool(f.Value.String())
	if err != nil {
		return false
	}
	return value
}

func stringFlag(fs *flag.FlagSet, name string) string {
	f := fs.Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func intFlag(fs *flag.FlagSet, name string) int {
	f := fs.Lookup(name)
	if f == nil {
		return 0
	}
	value, err := strconv.Atoi(f.Value.String())
	if err != nil {
		return 0
	}
	return value
}

func durationFlag(fs *flag.FlagSet, name string) time.Duration {
	f := fs.Lookup(name)
	if f == nil {
		return 0
	}
	value, err := time.ParseDuration(f.Value.String())
	if err != nil {
		return 0
	}
	return value
}
