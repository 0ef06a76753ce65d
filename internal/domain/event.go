package domain

import (
	"context"
	"time"
)

// EventType names a workflow lifecycle point.
type EventType string

const (
	EventSubmitStart   EventType = "submit_start"
	EventSubmitSuccess EventType = "submit_success"
	EventSubmitFailure EventType = "submit_failure"
)

// Workflow names used in events and metrics labels.
const (
	WorkflowAnalysis = "analysis"
	WorkflowChat     = "chat"
)

// WorkflowEvent is emitted by a workflow at each lifecycle point.
type WorkflowEvent struct {
	Workflow  string        `json:"workflow"`
	Type      EventType     `json:"type"`
	VisitID   string        `json:"visit_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Observer receives workflow lifecycle events.
type Observer interface {
	OnEvent(ctx context.Context, event WorkflowEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event WorkflowEvent)

// OnEvent calls f(ctx, event).
func (f ObserverFunc) OnEvent(ctx context.Context, event WorkflowEvent) {
	f(ctx, event)
}

// NopObserver discards all events.
var NopObserver Observer = ObserverFunc(func(context.Context, WorkflowEvent) {})
