package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/styleswipe/pkg/logger"
)

const maxEventBytes = 64 * 1024

// Publisher sends interaction events through a synchronous producer
type Publisher struct {
	producer sarama.SyncProducer
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = "styleswipe"
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 2
	cfg.Producer.Timeout = 5 * time.Second
	cfg.Producer.MaxMessageBytes = maxEventBytes
	return cfg
}

// NewPublisher connects a producer to brokers
func NewPublisher(brokers []string) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, producerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	logger.Logger.Info().Strs("brokers", brokers).Str("topic", TopicInteractions).Msg("Kafka publisher ready")
	return NewPublisherWithProducer(producer), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

// Publish fills in the event id and timestamp when missing and sends the
// event keyed by user folder, so one user's events stay on one partition.
func (p *Publisher) Publish(ctx context.Context, event InteractionEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	ctx, span := otel.Tracer("kafka-publisher").Start(ctx, "kafka.publish."+event.EventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicInteractions),
			attribute.String("event.id", event.EventID),
			attribute.Int64("product.id", int64(event.ProductID)),
		),
	)
	defer span.End()

	msg, err := newMessage(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return fmt.Errorf("failed to send %s event: %w", event.EventType, err)
	}
	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)

	logger.Debug(ctx).
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("user_folder", event.UserFolder).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Interaction event published")
	return nil
}

func newMessage(ctx context.Context, event InteractionEvent) (*sarama.ProducerMessage, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]sarama.RecordHeader, 0, len(carrier)+2)
	headers = append(headers,
		sarama.RecordHeader{Key: []byte("event_type"), Value: []byte(event.EventType)},
		sarama.RecordHeader{Key: []byte("event_id"), Value: []byte(event.EventID)},
	)
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	key := event.UserFolder
	if key == "" {
		key = fmt.Sprintf("product_%d", event.ProductID)
	}
	return &sarama.ProducerMessage{
		Topic:   TopicInteractions,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	}, nil
}

// Close closes the producer
func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, InteractionEvent) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }
