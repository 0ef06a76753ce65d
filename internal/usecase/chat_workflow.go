package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/halalcheck/client/internal/domain"
)

// ChatWorkflowConfig holds configuration for a chat workflow
type ChatWorkflowConfig struct {
	VisitID  string
	Observer domain.Observer
}

// ChatWorkflow drives the chatbot page.
type ChatWorkflow struct {
	client   domain.AnalysisClient
	visitID  string
	observer domain.Observer

	mu     sync.Mutex
	state  ChatState
	closed bool
	wg     sync.WaitGroup
}

// NewChatWorkflow creates a workflow in PhaseIdle
func NewChatWorkflow(client domain.AnalysisClient, config ChatWorkflowConfig) *ChatWorkflow {
	observer := config.Observer
	if observer == nil {
		observer = domain.NopObserver
	}

	return &ChatWorkflow{
		client:   client,
		visitID:  config.VisitID,
		observer: observer,
		state:    ChatState{Phase: PhaseIdle},
	}
}

// SetQuestion updates the question text. The phase is left alone.
func (w *ChatWorkflow) SetQuestion(question string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return domain.ErrWorkflowClosed
	}
	w.state.Question = question
	return nil
}

// Ask sets the question and submits it.
func (w *ChatWorkflow) Ask(ctx context.Context, question string) error {
	if err := w.SetQuestion(question); err != nil {
		return err
	}
	return w.Submit(ctx)
}

// Submit validates the question and starts the call in the background.
func (w *ChatWorkflow) Submit(ctx context.Context) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return domain.ErrWorkflowClosed
	}
	if w.state.Phase == PhaseSubmitting {
		w.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	if strings.TrimSpace(w.state.Question) == "" {
		vErr := &domain.ValidationError{Message: domain.MsgBlankQuestion}
		w.state.Phase = PhaseFailed
		w.state.Result = nil
		w.state.Error = vErr.Message
		w.mu.Unlock()
		return vErr
	}

	question := w.state.Question
	w.state.Phase = PhaseSubmitting
	w.state.Result = nil
	w.state.Error = ""
	w.wg.Add(1)
	w.mu.Unlock()

	started := time.Now()
	w.emit(ctx, domain.WorkflowEvent{Type: domain.EventSubmitStart, Timestamp: started})

	go w.run(context.WithoutCancel(ctx), question, started)
	return nil
}

func (w *ChatWorkflow) run(ctx context.Context, question string, started time.Time) {
	defer w.wg.Done()

	result, err := w.client.Chat(ctx, question)
	if err == nil && result == nil {
		result = &domain.ChatResult{}
	}

	event := domain.WorkflowEvent{Timestamp: time.Now(), Duration: time.Since(started)}
	if err != nil {
		event.Type = domain.EventSubmitFailure
		event.ErrorKind = domain.ErrorKind(err)
		event.Message = err.Error()
	} else {
		event.Type = domain.EventSubmitSuccess
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
func (w *ChatWorkflow) Snapshot() ChatState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Wait blocks until no submission is in flight
func (w *ChatWorkflow) Wait() {
	w.wg.Wait()
}

// Close detaches the workflow from its page; late results are dropped.
func (w *ChatWorkflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// VisitID returns the page visit this workflow belongs to
func (w *ChatWorkflow) VisitID() string {
	return w.visitID
}

func (w *ChatWorkflow) emit(ctx context.Context, event domain.WorkflowEvent) {
	event.Workflow = domain.WorkflowChat
	event.VisitID = w.visitID
	w.observer.OnEvent(ctx, event)
}
