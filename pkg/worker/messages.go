// Package worker runs the capture loop on a dedicated goroutine. The
// owner drives it with commands and observes progress through events;
// all communication happens by value over channels.
package worker

import (
	"time"

	"github.com/localguard/localguard/pkg/frame"
)

// CommandKind discriminates worker commands.
type CommandKind int

// Worker command kinds.
const (
	KindCaptureTick CommandKind = iota
	KindResetBatch
	KindShutdown
)

// Command instructs the worker. CaptureTick carries the capture target and
// timestamp; the other kinds carry no payload.
type Command struct {
	Kind         CommandKind
	DisplayID    string
	SessionID    string
	CapturedAtMS int64
}

// CaptureTick builds a capture command for one scheduler tick.
func CaptureTick(displayID, sessionID string, capturedAtMS int64) Command {
	return Command{
		Kind:         KindCaptureTick,
		DisplayID:    displayID,
		SessionID:    sessionID,
		CapturedAtMS: capturedAtMS,
	}
}

// ResetBatch builds a command that clears buffered frames and counters.
func ResetBatch() Command {
	return Command{Kind: KindResetBatch}
}

// Shutdown builds a command that terminates the worker loop.
func Shutdown() Command {
	return Command{Kind: KindShutdown}
}

// Event is the closed set of worker notifications.
type Event interface {
	isEvent()
}

// TickCaptured reports one frame successfully buffered.
type TickCaptured struct {
	FrameNumber    uint64
	BufferedFrames int
	Duration       time.Duration
}

// BatchPrepared reports a full batch composed, staged, and ready to upload.
type BatchPrepared struct {
	FrameNumber   uint64
	PreparedCount uint64
	MosaicWidth   int
	MosaicHeight  int
	Duration      time.Duration
	Artifacts     StagedArtifacts
	Payload       frame.MosaicPayload
}

// WorkerError reports a per-tick failure. The worker keeps running.
type WorkerError struct {
	Message string
}

func (TickCaptured) isEvent()  {}
func (BatchPrepared) isEvent() {}
func (WorkerError) isEvent()   {}
