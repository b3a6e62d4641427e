package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev InteractionEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.EventType != EventTypeProductLiked || ev.ProductID != 7 || ev.EventID == "" || ev.Timestamp.IsZero() {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer)
	if err := p.Publish(context.Background(), InteractionEvent{EventType: EventTypeProductLiked, ProductID: 7, UserFolder: "u"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestPublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer)
	err := p.Publish(context.Background(), InteractionEvent{EventType: EventTypeProductClicked, ProductID: 1})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Errorf("Publish() error = %v, want ErrOutOfBrokers", err)
	}
	p.Close()
}

func TestHandleMessage(t *testing.T) {
	c := &Consumer{handlers: make(map[string]EventHandler)}
	var got []InteractionEvent
	c.RegisterHandler(EventTypeSwipeRecorded, func(_ context.Context, ev InteractionEvent) error {
		got = append(got, ev)
		return nil
	})
	h := &consumerGroupHandler{consumer: c}

	payload, _ := json.Marshal(InteractionEvent{EventID: "e1", EventType: EventTypeSwipeRecorded, ProductID: 3})
	message := func(eventType string) *sarama.ConsumerMessage {
		return &sarama.ConsumerMessage{
			Topic:   TopicInteractions,
			Value:   payload,
			Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(eventType)}},
		}
	}

	h.handleMessage(context.Background(), message(EventTypeSwipeRecorded))
	h.handleMessage(context.Background(), message(EventTypeProductClicked))
	h.handleMessage(context.Background(), &sarama.ConsumerMessage{Value: payload})

	if len(got) != 1 || got[0].EventID != "e1" || got[0].ProductID != 3 {
		t.Errorf("handled = %+v, want the single swipe event", got)
	}
}
