package usecase

import "github.com/halalcheck/client/internal/domain"

// Phase is the position of a workflow in its submit cycle.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseAwaitingInput Phase = "awaiting_input"
	PhaseSubmitting    Phase = "submitting"
	PhaseSucceeded     Phase = "succeeded"
	PhaseFailed        Phase = "failed"
)

// Terminal reports whether p ends a submit cycle.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// AnalysisState is a snapshot of an AnalysisWorkflow.
// Result is set only in PhaseSucceeded and Error only in PhaseFailed.
type AnalysisState struct {
	Phase    Phase
	FileName string
	Result   *domain.AnalysisResult
	Error    string
}

// Loading reports whether a request is in flight.
func (s AnalysisState) Loading() bool {
	return s.Phase == PhaseSubmitting
}

// ChatState is a snapshot of a ChatWorkflow.
type ChatState struct {
	Phase    Phase
	Question string
	Result   *domain.ChatResult
	Error    string
}

// Loading reports whether a request is in flight.
func (s ChatState) Loading() bool {
	return s.Phase == PhaseSubmitting
}
