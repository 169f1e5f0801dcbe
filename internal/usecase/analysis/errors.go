// Package analysis runs the four AI analyses (soil, disease, crops, yield):
// it validates input, renders the prompt, calls the configured provider and
// decodes and normalizes the JSON answer.
package analysis

import (
	"errors"
	"fmt"

	"agrisense/internal/infra/analyzer"
)

// Generic user-facing messages, one per feature.
const (
	MsgSoilFailed    = "Failed to analyze soil. Please ensure the lighting is natural and focus is sharp."
	MsgDiseaseFailed = "Failed to scan plant. Ensure the leaf is clearly visible."
	MsgCropsFailed   = "Error getting recommendations."
	MsgYieldFailed   = "Error predicting yield."
)

var (
	// ErrInvalidResponse indicates the model answered with JSON that does not match the schema.
	ErrInvalidResponse = errors.New("invalid analysis response")
)

// AnalysisError wraps every non-validation failure of an analysis.
// Clients only ever see UserMessage; Err is for logs.
type AnalysisError struct {
	Kind analyzer.Kind
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// UserMessage returns the generic message for the failed feature.
func (e *AnalysisError) UserMessage() string {
	return UserMessage(e.Kind)
}

// UserMessage returns the generic failure message for kind.
func UserMessage(kind analyzer.Kind) string {
	switch kind {
	case analyzer.KindSoil:
		return MsgSoilFailed
	case analyzer.KindDisease:
		return MsgDiseaseFailed
	case analyzer.KindCrops:
		return MsgCropsFailed
	case analyzer.KindYield:
		return MsgYieldFailed
	default:
		return "Analysis failed."
	}
}
