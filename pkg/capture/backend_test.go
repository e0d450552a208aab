package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSyntheticBackendProducesValidFrames(t *testing.T) {
	backend := NewSyntheticBackend()
	displays := backend.ListDisplays()
	require.Len(t, displays, 1)

	captured, err := backend.CaptureFrame(displays[0].ID, 1234)
	require.NoError(t, err)
	require.Equal(t, displays[0].ID, captured.ScreenID)
	require.Equal(t, int64(1234), captured.CapturedAtMS)
	require.Len(t, captured.RGBA, displays[0].Width*displays[0].Height*4)
}

func TestSyntheticBackendDistinguishesConsecutiveFrames(t *testing.T) {
	backend := NewSyntheticBackend()

	first, err := backend.CaptureFrame("display-1", 0)
	require.NoError(t, err)
	second, err := backend.CaptureFrame("display-1", 1)
	require.NoError(t, err)
	require.NotEqual(t, first.RGBA[0], second.RGBA[0])
}

func TestSyntheticBackendRejectsUnknownDisplay(t *testing.T) {
	backend := NewSyntheticBackend()

	_, err := backend.CaptureFrame("display-42", 0)
	var unknown *UnknownDisplayError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "display-42", unknown.ID)
}

func TestSelectDisplay(t *testing.T) {
	displays := []DisplayInfo{
		{ID: "display-1", Name: "Primary"},
		{ID: "display-2", Name: "Secondary"},
	}

	found, ok := SelectDisplay(displays, "display-2")
	require.True(t, ok)
	require.Equal(t, "Secondary", found.Name)

	_, ok = SelectDisplay(displays, "display-3")
	require.False(t, ok)
}

func TestNewConfigCadence(t *testing.T) {
	_, err := NewConfig(0)
	require.ErrorIs(t, err, ErrInvalidFPS)

	cfg, err := NewConfig(1)
	require.NoError(t, err)
	require.Equal(t, time.Second, cfg.Interval())
	require.Equal(t, int64(1000), cfg.IntervalMS())

	cfg, err = NewConfig(4)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.Interval())
}

func TestScheduledTimes(t *testing.T) {
	cfg, err := NewConfig(2)
	require.NoError(t, err)

	times := cfg.ScheduledTimes(1000, 4)
	require.Equal(t, []int64{1000, 1500, 2000, 2500}, times)

	require.Empty(t, cfg.ScheduledTimes(0, 0))
}
