package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tair/styleswipe/kafka"
	"github.com/tair/styleswipe/pkg/logger"
)

func (c *cli) eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Consume interaction events and log them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.Kafka.Enabled {
				return fmt.Errorf("kafka is disabled, set KAFKA_ENABLED=true")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer, err := kafka.NewConsumer(c.cfg.Kafka.Brokers(), c.cfg.Kafka.GroupID)
			if err != nil {
				return err
			}
			defer consumer.Close()

			for _, eventType := range []string{kafka.EventTypeSwipeRecorded, kafka.EventTypeProductLiked, kafka.EventTypeProductClicked} {
				consumer.RegisterHandler(eventType, logEvent)
			}
			return consumer.Run(ctx)
		},
	}
}

func logEvent(ctx context.Context, event kafka.InteractionEvent) error {
	ev := logger.Info(ctx).
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("user_folder", event.UserFolder).
		Uint("product_id", event.ProductID).
		Time("timestamp", event.Timestamp)
	if event.Liked != nil {
		ev = ev.Bool("liked", *event.Liked)
	}
	if event.Referrer != "" {
		ev = ev.Str("referrer", event.Referrer)
	}
	ev.Msg("Interaction event")
	return nil
}
