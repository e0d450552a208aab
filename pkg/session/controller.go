package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/localguard/localguard/pkg/analysis"
	"github.com/localguard/localguard/pkg/auth"
	"github.com/localguard/localguard/pkg/capture"
	"github.com/localguard/localguard/pkg/frame"
	"github.com/localguard/localguard/pkg/pipeline"
	"github.com/localguard/localguard/pkg/worker"
)

// ErrCaptureBlocked reports a StartCapture attempt rejected by the runtime
// kill switch.
var ErrCaptureBlocked = errors.New("capture blocked by kill switch")

// ErrGatesNotSatisfied reports a StartCapture attempt before authentication,
// consent, and display selection are all in place.
var ErrGatesNotSatisfied = errors.New("capture requires authenticated session, consent, and display")

// ControllerOptions captures the collaborators for a session controller.
type ControllerOptions struct {
	Version       string
	AuthClient    *auth.Client
	Backend       capture.Backend
	UploadsDir    string
	BatchCapacity int
	JPEGQuality   int
	Clock         func() time.Time
	LookupEnv     capture.LookupEnvFunc
	Logger        *slog.Logger
}

// Controller is the single-owner control side of a monitoring session. It
// mediates between the auth state machine, the tick scheduler, and the
// capture worker. All methods must be called from the owning goroutine;
// worker interaction happens exclusively over channels.
type Controller struct {
	version    string
	authClient *auth.Client
	backend    capture.Backend
	uploadsDir string
	capacity   int
	quality    int
	clock      func() time.Time
	lookupEnv  capture.LookupEnvFunc
	logger     *slog.Logger

	machine *auth.StateMachine
	state   State
	worker  *worker.Worker

	capturing       bool
	tickInFlight    bool
	framesBuffered  int
	frameNumber     uint64
	preparedBatches uint64
	skippedTicks    uint64
	lastArtifacts   worker.StagedArtifacts
	pendingUploads  []frame.MosaicPayload
}

// NewController validates the options and constructs an idle controller.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.AuthClient == nil {
		return nil, errors.New("auth client must not be nil")
	}
	if opts.Backend == nil {
		return nil, errors.New("capture backend must not be nil")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		version:    opts.Version,
		authClient: opts.AuthClient,
		backend:    opts.Backend,
		uploadsDir: opts.UploadsDir,
		capacity:   opts.BatchCapacity,
		quality:    opts.JPEGQuality,
		clock:      clock,
		lookupEnv:  opts.LookupEnv,
		logger:     logger,
		machine:    auth.NewStateMachine(),
		state:      NewState(opts.Version),
	}, nil
}

// State returns a snapshot of the session state.
func (c *Controller) State() State { return c.state }

// Capturing reports whether the scheduler should keep ticking.
func (c *Controller) Capturing() bool { return c.capturing }

// SkippedTicks reports how many scheduler ticks backpressure discarded.
func (c *Controller) SkippedTicks() uint64 { return c.skippedTicks }

// TickInFlight reports whether a capture command is still being processed.
func (c *Controller) TickInFlight() bool { return c.tickInFlight }

// Token exposes the current session token, if authenticated.
func (c *Controller) Token() (auth.SessionToken, bool) { return c.machine.Token() }

// HandleLogin authenticates with the configured transport and records the
// resulting token in the state machine.
func (c *Controller) HandleLogin(creds auth.Credentials) error {
	nowMS := c.clock().UnixMilli()
	token, err := c.authClient.Login(creds, nowMS)
	if err != nil {
		c.machine.Logout()
		c.syncAuth()
		c.state.Network = StageDegraded
		c.state.AnalysisStatus = "Login failed."
		c.logger.Error("login failed", "stage", "auth", "detail", pipeline.RedactSensitive(err.Error()))
		return fmt.Errorf("login: %w", err)
	}

	c.machine.OnLoginSuccess(token)
	c.syncAuth()
	c.state.Network = StageHealthy
	c.state.AnalysisStatus = "Login successful. Ready for consent + capture."
	c.logger.Info("session established", "stage", "auth", "session_id", token.SessionID)
	return nil
}

// SetConsent records the operator's consent decision. Revoking consent while
// capturing stops the capture.
func (c *Controller) SetConsent(granted bool) {
	c.state.SetConsent(granted)
	c.logger.Info("consent toggled", "stage", "consent", "granted", granted)
	if !granted && c.capturing {
		c.StopCapture()
	}
}

// SelectDisplay records the capture target after checking it exists.
func (c *Controller) SelectDisplay(displayID string) error {
	if _, ok := capture.SelectDisplay(c.backend.ListDisplays(), displayID); !ok {
		return &capture.UnknownDisplayError{ID: displayID}
	}
	c.state.SelectDisplay(displayID)
	c.logger.Info("display selected", "stage", "display", "display_id", displayID)
	return nil
}

// StartCapture checks the kill switch and session gates, ensures the worker
// is running, and resets the batch for a fresh capture sequence.
func (c *Controller) StartCapture() error {
	c.syncAuth()

	if !capture.EnabledFromEnv(c.lookupEnv) {
		c.state.Capture = StageDegraded
		c.logger.Error("capture blocked", "stage", "capture", "reason", "kill switch")
		return ErrCaptureBlocked
	}
	if c.capturing {
		c.logger.Info("capture start ignored", "stage", "capture", "reason", "already running")
		return nil
	}
	if !c.state.CanStartCapture() {
		return ErrGatesNotSatisfied
	}

	if err := c.ensureWorker(); err != nil {
		c.state.Capture = StageDegraded
		return err
	}
	c.worker.Send(worker.ResetBatch())

	c.frameNumber = 0
	c.framesBuffered = 0
	c.preparedBatches = 0
	c.skippedTicks = 0
	c.lastArtifacts = worker.StagedArtifacts{}
	c.pendingUploads = nil
	c.tickInFlight = false
	c.capturing = true
	c.state.Capture = StageRunning
	c.state.Network = StageIdle
	c.state.Upload = StageIdle
	c.state.AnalysisStatus = "Capture started. Preparing first mosaic batch."
	c.logger.Info("capture started", "stage", "capture", "display_id", c.state.SelectedDisplay)
	return nil
}

// StopCapture halts scheduling and clears the buffered batch. The worker
// stays alive for a later restart.
func (c *Controller) StopCapture() {
	if c.worker != nil {
		c.worker.Send(worker.ResetBatch())
	}
	c.capturing = false
	c.tickInFlight = false
	c.framesBuffered = 0
	c.state.Capture = StageIdle
	c.state.AnalysisStatus = "Capture stopped."
	c.logger.Info("capture stopped", "stage", "capture")
}

// OnSchedulerTick handles one scheduler tick: re-syncs auth, enforces
// at-most-one-tick-in-flight backpressure, and dispatches a capture command.
// It reports whether a command was dispatched.
func (c *Controller) OnSchedulerTick() (bool, error) {
	if !c.capturing {
		return false, nil
	}

	c.syncAuth()
	if c.state.Auth != auth.StateAuthenticated {
		c.capturing = false
		c.state.Capture = StageDegraded
		c.state.AnalysisStatus = "Session expired; reauthentication required."
		c.logger.Error("capture stopped", "stage", "capture", "reason", "expired auth")
		return false, nil
	}

	if c.tickInFlight {
		c.skippedTicks++
		c.logger.Info("tick skipped", "stage", "capture", "reason", "previous tick in flight")
		return false, nil
	}

	token, ok := c.machine.Token()
	if !ok {
		return false, errors.New("missing session token for capture tick")
	}
	if c.worker == nil {
		return false, errors.New("capture worker is not initialized")
	}

	c.worker.Send(worker.CaptureTick(c.state.SelectedDisplay, token.SessionID, c.clock().UnixMilli()))
	c.tickInFlight = true
	c.state.Upload = StageRunning
	return true, nil
}

// DrainEvents consumes every pending worker event without blocking.
func (c *Controller) DrainEvents() {
	if c.worker == nil {
		return
	}
	for {
		select {
		case ev, ok := <-c.worker.Events():
			if !ok {
				return
			}
			c.handleEvent(ev)
		default:
			return
		}
	}
}

// TakePendingUploads returns payloads prepared since the last call and
// clears the queue.
func (c *Controller) TakePendingUploads() []frame.MosaicPayload {
	pending := c.pendingUploads
	c.pendingUploads = nil
	return pending
}

// RecordUploadOutcome projects an upload attempt result onto the state.
func (c *Controller) RecordUploadOutcome(err error) {
	if err != nil {
		c.state.Upload = StageDegraded
		c.state.Network = StageDegraded
		c.logger.Error("upload failed", "stage", "upload", "detail", pipeline.RedactSensitive(err.Error()))
		return
	}
	c.state.Upload = StageHealthy
	c.state.Network = StageHealthy
}

// ApplyAnalysis parses an analysis response and projects its risk signals
// onto the session state.
func (c *Controller) ApplyAnalysis(raw []byte) ([]analysis.RiskSignal, error) {
	signals, err := pipeline.ParseAnalysis(raw)
	if err != nil {
		return nil, err
	}
	c.state.ApplyRiskSignals(signals)
	return signals, nil
}

// Shutdown stops the worker and drains its remaining events.
func (c *Controller) Shutdown() {
	if c.worker == nil {
		return
	}
	c.worker.Stop()
	for ev := range c.worker.Events() {
		c.handleEvent(ev)
	}
	c.worker = nil
	c.capturing = false
	c.tickInFlight = false
	c.logger.Info("worker joined", "stage", "capture_worker")
}

func (c *Controller) ensureWorker() error {
	if c.worker != nil {
		return nil
	}
	w, err := worker.New(worker.Options{
		Backend:       c.backend,
		BatchCapacity: c.capacity,
		UploadsDir:    c.uploadsDir,
		JPEGQuality:   c.quality,
		Clock:         c.clock,
	})
	if err != nil {
		return fmt.Errorf("spawn capture worker: %w", err)
	}
	w.Start()
	c.worker = w
	c.logger.Info("worker spawned", "stage", "capture_worker")
	return nil
}

func (c *Controller) handleEvent(ev worker.Event) {
	switch event := ev.(type) {
	case worker.TickCaptured:
		c.tickInFlight = false
		c.frameNumber = event.FrameNumber
		c.framesBuffered = event.BufferedFrames
		c.state.AnalysisStatus = fmt.Sprintf("Captured frame %d (batch position %d/%d).",
			event.FrameNumber, event.BufferedFrames, c.batchCapacity())
		c.logger.Info("frame acquired", "stage", "capture",
			"frame", event.FrameNumber,
			"buffered_frames", event.BufferedFrames,
			"capture_ms", event.Duration.Milliseconds())

	case worker.BatchPrepared:
		c.frameNumber = event.FrameNumber
		c.framesBuffered = 0
		c.preparedBatches = event.PreparedCount
		c.lastArtifacts = event.Artifacts
		c.pendingUploads = append(c.pendingUploads, event.Payload)
		c.state.Upload = StageHealthy
		c.state.AnalysisStatus = fmt.Sprintf(
			"Prepared batch #%d for upload (%dx%d, jpeg=%d bytes, json=%d bytes).",
			event.PreparedCount, event.MosaicWidth, event.MosaicHeight,
			event.Artifacts.JPEGSize, event.Artifacts.JSONSize)
		c.logger.Info("artifact ready", "stage", "upload_prep",
			"prepared_batches", event.PreparedCount,
			"jpeg", event.Artifacts.JPEGPath,
			"json", event.Artifacts.JSONPath,
			"encode_ms", event.Duration.Milliseconds())

	case worker.WorkerError:
		c.tickInFlight = false
		c.capturing = false
		c.state.Capture = StageDegraded
		c.state.Upload = StageDegraded
		c.state.AnalysisStatus = "Capture pipeline failed. Review log for details."
		c.logger.Error("worker failure", "stage", "capture_worker",
			"detail", pipeline.RedactSensitive(event.Message))
	}
}

func (c *Controller) syncAuth() {
	c.machine.OnTick(c.clock().UnixMilli())
	c.state.Auth = c.machine.State()
}

func (c *Controller) batchCapacity() int {
	if c.capacity > 0 {
		return c.capacity
	}
	return 9
}
