package command

import (
	"context"

	"github.com/tair/styleswipe/kafka"
	"github.com/tair/styleswipe/pkg/logger"
)

// EventPublisher publishes interaction events. Failures never fail a command.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.InteractionEvent) error
}

func publish(ctx context.Context, p EventPublisher, event kafka.InteractionEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn(ctx).Err(err).Str("event_type", event.EventType).Msg("Interaction event dropped")
	}
}
