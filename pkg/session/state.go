// Package session owns the control-side runtime: the aggregate state the
// operator observes and the controller that mediates between the auth
// machine, the scheduler, and the capture worker.
package session

import (
	"github.com/localguard/localguard/pkg/analysis"
	"github.com/localguard/localguard/pkg/auth"
)

// StageStatus describes the health of one pipeline stage.
type StageStatus string

// Stage statuses used for the capture, network, and upload stages.
const (
	StageIdle     StageStatus = "idle"
	StageRunning  StageStatus = "running"
	StageHealthy  StageStatus = "healthy"
	StageDegraded StageStatus = "degraded"
)

// State aggregates the observable runtime status of a monitoring session.
type State struct {
	Version         string
	Auth            auth.State
	ConsentGranted  bool
	SelectedDisplay string
	Capture         StageStatus
	Network         StageStatus
	Upload          StageStatus
	AnalysisStatus  string
}

// NewState creates the default session state.
func NewState(version string) State {
	return State{
		Version:        version,
		Auth:           auth.StateUnauthenticated,
		Capture:        StageIdle,
		Network:        StageIdle,
		Upload:         StageIdle,
		AnalysisStatus: "No analysis yet",
	}
}

// SelectDisplay records the capture target.
func (s *State) SelectDisplay(displayID string) {
	s.SelectedDisplay = displayID
}

// SetConsent records the operator's explicit capture consent.
func (s *State) SetConsent(granted bool) {
	s.ConsentGranted = granted
}

// CanStartCapture reports whether the capture gates are all satisfied:
// authenticated, consent granted, and a display selected.
func (s State) CanStartCapture() bool {
	return s.Auth == auth.StateAuthenticated && s.ConsentGranted && s.SelectedDisplay != ""
}

// ApplyRiskSignals projects the highest-priority signal into the analysis
// status text. An empty signal set reads as no risks reported.
func (s *State) ApplyRiskSignals(signals []analysis.RiskSignal) {
	if len(signals) == 0 {
		s.AnalysisStatus = "No risks reported"
		return
	}

	highest := analysis.LevelUnknown
	for _, signal := range signals {
		if riskPriority(signal.Level) > riskPriority(highest) {
			highest = signal.Level
		}
	}

	switch highest {
	case analysis.LevelLow:
		s.AnalysisStatus = "Low risk"
	case analysis.LevelMedium:
		s.AnalysisStatus = "Medium risk"
	case analysis.LevelHigh:
		s.AnalysisStatus = "High risk"
	case analysis.LevelCritical:
		s.AnalysisStatus = "Critical risk"
	default:
		s.AnalysisStatus = "Unknown risk"
	}
}

func riskPriority(level analysis.RiskLevel) int {
	switch level {
	case analysis.LevelLow:
		return 1
	case analysis.LevelMedium:
		return 2
	case analysis.LevelHigh:
		return 3
	case analysis.LevelCritical:
		return 4
	default:
		return 0
	}
}
