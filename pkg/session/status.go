package session

import (
	"github.com/localguard/localguard/pkg/auth"
	"github.com/localguard/localguard/pkg/capture"
)

// RuntimeStatus is a flat snapshot of the session state for diagnostics
// output and status displays.
type RuntimeStatus struct {
	Version         string      `json:"version"`
	Auth            auth.State  `json:"auth"`
	ConsentGranted  bool        `json:"consent_granted"`
	SelectedDisplay string      `json:"selected_display,omitempty"`
	Capture         StageStatus `json:"capture"`
	Network         StageStatus `json:"network"`
	Upload          StageStatus `json:"upload"`
	AnalysisStatus  string      `json:"analysis_status"`
	CaptureAllowed  bool        `json:"capture_allowed"`
}

// ProjectRuntimeStatus flattens the session state, folding the runtime kill
// switch into CaptureAllowed.
func ProjectRuntimeStatus(state State, lookup capture.LookupEnvFunc) RuntimeStatus {
	return RuntimeStatus{
		Version:         state.Version,
		Auth:            state.Auth,
		ConsentGranted:  state.ConsentGranted,
		SelectedDisplay: state.SelectedDisplay,
		Capture:         state.Capture,
		Network:         state.Network,
		Upload:          state.Upload,
		AnalysisStatus:  state.AnalysisStatus,
		CaptureAllowed:  state.CanStartCapture() && capture.EnabledFromEnv(lookup),
	}
}
