package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/localguard/localguard/pkg/capture"
	"github.com/localguard/localguard/pkg/frame"
	"github.com/localguard/localguard/pkg/mosaic"
	"github.com/localguard/localguard/pkg/pipeline"
)

const defaultEventBuffer = 64

// Options captures the knobs for constructing a Worker.
type Options struct {
	Backend       capture.Backend
	BatchCapacity int
	UploadsDir    string
	JPEGQuality   int
	EventBuffer   int
	Clock         func() time.Time
}

// Worker owns the capture backend and frame batch on a single goroutine.
// Commands arrive over a channel; progress flows back as events. The events
// channel is closed when the loop exits.
type Worker struct {
	backend  capture.Backend
	capacity int
	stager   Stager
	clock    func() time.Time

	commands chan Command
	events   chan Event
	done     chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New validates the options and constructs a stopped Worker.
func New(opts Options) (*Worker, error) {
	if opts.Backend == nil {
		return nil, errors.New("capture backend must not be nil")
	}
	capacity := opts.BatchCapacity
	if capacity == 0 {
		capacity = mosaic.FrameCount
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("batch capacity must be positive, got %d", capacity)
	}
	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Worker{
		backend:  opts.Backend,
		capacity: capacity,
		stager:   Stager{Dir: opts.UploadsDir, Quality: opts.JPEGQuality, Clock: clock},
		clock:    clock,
		commands: make(chan Command),
		events:   make(chan Event, buffer),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the worker goroutine. Subsequent calls are no-ops.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		go w.loop()
	})
}

// Events exposes the worker's notification stream.
func (w *Worker) Events() <-chan Event {
	return w.events
}

// Send delivers a command to the worker, blocking until accepted.
func (w *Worker) Send(cmd Command) {
	select {
	case w.commands <- cmd:
	case <-w.done:
	}
}

// Stop requests shutdown and waits for the loop to exit. The caller should
// keep draining Events until the channel closes.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.Send(Shutdown())
	})
	<-w.done
}

func (w *Worker) loop() {
	defer close(w.done)
	defer close(w.events)

	batch, err := frame.NewBatch(w.capacity)
	if err != nil {
		w.events <- WorkerError{Message: fmt.Sprintf("frame batch initialization failed: %v", err)}
		return
	}

	var frameNumber uint64
	var preparedBatches uint64

	for cmd := range w.commands {
		switch cmd.Kind {
		case KindCaptureTick:
			started := w.clock()

			captured, err := w.backend.CaptureFrame(cmd.DisplayID, cmd.CapturedAtMS)
			if err != nil {
				w.events <- WorkerError{Message: fmt.Sprintf("frame capture failed: %v", err)}
				continue
			}

			full, err := batch.Push(captured)
			if err != nil {
				w.events <- WorkerError{Message: fmt.Sprintf("frame batch push failed: %v", err)}
				continue
			}

			frameNumber++
			w.events <- TickCaptured{
				FrameNumber:    frameNumber,
				BufferedFrames: batch.Len(),
				Duration:       w.clock().Sub(started),
			}

			if full == nil {
				continue
			}

			prepareStarted := w.clock()
			payload, err := pipeline.BatchToPayload(full, cmd.SessionID)
			if err != nil {
				w.events <- WorkerError{Message: fmt.Sprintf("batch payload build failed: %v", err)}
				continue
			}
			staged, err := w.stager.Stage(payload)
			if err != nil {
				w.events <- WorkerError{Message: fmt.Sprintf("artifact staging failed: %v", err)}
				continue
			}

			preparedBatches++
			w.events <- BatchPrepared{
				FrameNumber:   frameNumber,
				PreparedCount: preparedBatches,
				MosaicWidth:   payload.MosaicWidth,
				MosaicHeight:  payload.MosaicHeight,
				Duration:      w.clock().Sub(prepareStarted),
				Artifacts:     staged,
				Payload:       payload,
			}

		case KindResetBatch:
			frameNumber = 0
			preparedBatches = 0
			if fresh, err := frame.NewBatch(w.capacity); err == nil {
				batch = fresh
			}

		case KindShutdown:
			return
		}
	}
}
