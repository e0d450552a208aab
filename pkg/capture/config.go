package capture

import (
	"math"
	"time"
)

// Config is the validated capture cadence configuration.
type Config struct {
	FPS int
}

// NewConfig validates and returns a capture configuration.
func NewConfig(fps int) (Config, error) {
	if fps <= 0 {
		return Config{}, ErrInvalidFPS
	}
	return Config{FPS: fps}, nil
}

// Interval returns the capture interval between frames.
func (c Config) Interval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// IntervalMS returns the capture interval in milliseconds.
func (c Config) IntervalMS() int64 {
	return 1000 / int64(c.FPS)
}

// ScheduledTimes computes deterministic capture timestamps: count instants
// starting at startMS, spaced by the configured interval, saturating instead
// of wrapping on overflow.
func (c Config) ScheduledTimes(startMS int64, count int) []int64 {
	interval := c.IntervalMS()
	times := make([]int64, count)
	for i := range times {
		offset := interval * int64(i)
		if interval != 0 && offset/interval != int64(i) {
			offset = math.MaxInt64
		}
		if startMS > math.MaxInt64-offset {
			times[i] = math.MaxInt64
			continue
		}
		times[i] = startMS + offset
	}
	return times
}
