package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/halalcheck/client/internal/domain"
)

var errEmptyAnalysis = errors.New("analysis service returned an empty result")

// AnalysisWorkflowConfig holds configuration for an analysis workflow
type AnalysisWorkflowConfig struct {
	ConfidenceThreshold float64
	VisitID             string
	Observer            domain.Observer
}

// AnalysisWorkflow drives the upload page: file selection, one submission
// at a time, and the resulting verdict or error.
type AnalysisWorkflow struct {
	client    domain.AnalysisClient
	threshold float64
	visitID   string
	observer  domain.Observer

	mu     sync.Mutex
	state  AnalysisState
	file   *domain.Upload
	closed bool
	wg     sync.WaitGroup
}

// NewAnalysisWorkflow creates a workflow in PhaseIdle
func NewAnalysisWorkflow(client domain.AnalysisClient, config AnalysisWorkflowConfig) *AnalysisWorkflow {
	threshold := config.ConfidenceThreshold
	if threshold == 0 {
		threshold = domain.DefaultConfidenceThreshold
	}
	observer := config.Observer
	if observer == nil {
		observer = domain.NopObserver
	}

	return &AnalysisWorkflow{
		client:    client,
		threshold: threshold,
		visitID:   config.VisitID,
		observer:  observer,
		state:     AnalysisState{Phase: PhaseIdle},
	}
}

// SelectFile replaces the chosen file. An empty upload clears the selection.
// Prior result and error are dropped unless a request is in flight, in which
// case only the file changes and the running submission still lands.
func (w *AnalysisWorkflow) SelectFile(file domain.Upload) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return domain.ErrWorkflowClosed
	}

	if file.Size() == 0 {
		w.file = nil
		w.state.FileName = ""
	} else {
		f := file
		w.file = &f
		w.state.FileName = file.Name
	}

	if w.state.Phase == PhaseSubmitting {
		return nil
	}

	w.state.Result = nil
	w.state.Error = ""
	if w.file == nil {
		w.state.Phase = PhaseIdle
	} else {
		w.state.Phase = PhaseAwaitingInput
	}
	return nil
}

// Submit validates the selection and starts the analysis in the background.
// It returns a *domain.ValidationError when no file is chosen and
// domain.ErrSubmissionInFlight when a previous submission is still running.
func (w *AnalysisWorkflow) Submit(ctx context.Context) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	if w.state.Phase == PhaseSubmitting {
		w.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	if w.file == nil {
		vErr := &domain.ValidationError{Message: domain.MsgNoFile}
		w.state.Phase = PhaseFailed
		w.state.Result = nil
		w.state.Error = vErr.Message
		w.mu.Unlock()
		return vErr
	}

	req := domain.AnalysisRequest{File: *w.file, ConfidenceThreshold: w.threshold}
	w.state.Phase = PhaseSubmitting
	w.state.Result = nil
	w.state.Error = ""
	w.wg.Add(1)
	w.mu.Unlock()

	started := time.Now()
	w.emit(ctx, domain.WorkflowEvent{Type: domain.EventSubmitStart, Timestamp: started})

	go w.run(context.WithoutCancel(ctx), req, started)
	return nil
}

func (w *AnalysisWorkflow) run(ctx context.Context, req domain.AnalysisRequest, started time.Time) {
	defer w.wg.Done()

	result, err := w.client.Analyze(ctx, req)
	if err == nil && result == nil {
		err = &domain.NetworkError{Err: errEmptyAnalysis}
	}

	event := domain.WorkflowEvent{Timestamp: time.Now(), Duration: time.Since(started)}
	if err != nil {
		event.Type = domain.EventSubmitFailure
		event.ErrorKind = domain.ErrorKind(err)
		event.Message = err.Error()
	} else {
		event.Type = domain.EventSubmitSuccess
		event.Message = string(result.Status)
	}

	// A closed workflow drops the outcome but still reports it.
	w.mu.Lock()
	if !w.closed {
		if err != nil {
			w.state.Phase = PhaseFailed
			w.state.Result = nil
			w.state.Error = domain.UserMessage(err)
		} else {
			w.state.Phase = PhaseSucceeded
			w.state.Result = result
			w.state.Error = ""
		}
	}
	w.mu.Unlock()

	w.emit(ctx, event)
}

// Snapshot returns the current state
func (w *AnalysisWorkflow) Snapshot() AnalysisState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Wait blocks until no submission is in flight
func (w *AnalysisWorkflow) Wait() {
	w.wg.Wait()
}

// Close detaches the workflow from its page. A submission still in flight
// runs to completion but its outcome is discarded.
func (w *AnalysisWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// VisitID returns the page visit this workflow belongs to
func (w *AnalysisWorkflow) VisitID() string {
	return w.visitID
}

func (w *AnalysisWorkflow) emit(ctx context.Context, event domain.WorkflowEvent) {
	event.Workflow = domain.WorkflowAnalysis
	event.VisitID = w.visitID
	w.observer.OnEvent(ctx, event)
}
