// Package analysis parses versioned risk-assessment responses and maps
// category severities to UI-safe risk levels.
package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaVersionV1 is the canonical schema version for analysis responses.
const SchemaVersionV1 = "v1"

// Response is a parsed analysis response from the protected API.
type Response struct {
	SchemaVersion string               `json:"schema_version"`
	RequestID     string               `json:"request_id"`
	ModelResults  []ModelResult        `json:"model_results"`
	Categories    []CategoryAssessment `json:"categories"`
}

// ModelResult is one model output emitted by the analysis service.
type ModelResult struct {
	Model      string  `json:"model"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// CategoryAssessment is one risk category score, severity expected in [0,100].
type CategoryAssessment struct {
	Category string `json:"category"`
	Severity int    `json:"severity"`
}

// RiskLevel is the UI-safe risk abstraction.
type RiskLevel string

const (
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
	LevelUnknown  RiskLevel = "unknown"
)

// RiskSignal is one category projected for status rendering. The category
// name is preserved verbatim even when the client does not recognise it.
type RiskSignal struct {
	Category string
	Level    RiskLevel
}

// ContractError reports a response that violates contract invariants.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string {
	return "analysis contract violation: " + e.Reason
}

// Parse decodes and validates a raw analysis response. Missing model_results
// or categories default to empty; a blank schema_version or request_id fails.
func Parse(raw []byte) (Response, error) {
	var response Response
	if err := json.Unmarshal(raw, &response); err != nil {
		return Response{}, fmt.Errorf("analysis decode failure: %w", err)
	}
	if strings.TrimSpace(response.SchemaVersion) == "" {
		return Response{}, &ContractError{Reason: "schema_version is empty"}
	}
	if strings.TrimSpace(response.RequestID) == "" {
		return Response{}, &ContractError{Reason: "request_id is empty"}
	}
	return response, nil
}

// MapRiskSignals converts category severities into risk signals. Severities
// outside the documented 0-100 range map to LevelUnknown instead of erroring
// so newly introduced server categories never crash the client.
func MapRiskSignals(response Response) []RiskSignal {
	signals := make([]RiskSignal, 0, len(response.Categories))
	for _, assessment := range response.Categories {
		signals = append(signals, RiskSignal{
			Category: assessment.Category,
			Level:    severityToLevel(assessment.Severity),
		})
	}
	return signals
}

func severityToLevel(severity int) RiskLevel {
	switch {
	case severity < 0 || severity > 100:
		return LevelUnknown
	case severity <= 24:
		return LevelLow
	case severity <= 49:
		return LevelMedium
	case severity <= 79:
		return LevelHigh
	default:
		return LevelCritical
	}
}
