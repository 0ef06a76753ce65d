package events

import (
	"context"
	"fmt"

	evbus "github.com/asaskevich/EventBus"
	"github.com/halalcheck/client/internal/domain"
	"go.uber.org/zap"
)

// Topic returns the bus topic for an event type, e.g. "workflow:submit_start".
func Topic(t domain.EventType) string {
	return "workflow:" + string(t)
}

// AllTopics lists every lifecycle topic.
var AllTopics = []string{
	Topic(domain.EventSubmitStart),
	Topic(domain.EventSubmitSuccess),
	Topic(domain.EventSubmitFailure),
}

// Bus publishes workflow lifecycle events. It satisfies domain.Observer so a
// workflow can emit straight onto it.
type Bus struct {
	bus evbus.Bus
}

// New creates an empty bus
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// OnEvent publishes event on its topic. Handlers run synchronously.
func (b *Bus) OnEvent(ctx context.Context, event domain.WorkflowEvent) {
	b.bus.Publish(Topic(event.Type), event)
}

// Subscribe registers fn on every lifecycle topic.
func (b *Bus) Subscribe(fn func(domain.WorkflowEvent)) error {
	for _, topic := range AllTopics {
		if err := b.bus.Subscribe(topic, fn); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

// LogHandler returns a subscriber that writes each event to logger.
func LogHandler(logger *zap.Logger) func(domain.WorkflowEvent) {
	return func(event domain.WorkflowEvent) {
		fields := []zap.Field{
			zap.String("workflow", event.Workflow),
			zap.String("event", string(event.Type)),
			zap.String("visit_id", event.VisitID),
		}
		if event.Duration > 0 {
			fields = append(fields, zap.Duration("duration", event.Duration))
		}

		switch event.Type {
		case domain.EventSubmitStart:
			logger.Info("submission started", fields...)
		case domain.EventSubmitSuccess:
			if event.Message != "" {
				fields = append(fields, zap.String("status", event.Message))
			}
			logger.Info("submission succeeded", fields...)
		case domain.EventSubmitFailure:
			fields = append(fields, zap.String("kind", event.ErrorKind), zap.String("error", event.Message))
			logger.Warn("submission failed", fields...)
		default:
			logger.Debug("workflow event", fields...)
		}
	}
}
