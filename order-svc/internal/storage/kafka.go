package storage

import (
	"context"

	"github.com/segmentio/kafka-go"

	"qrmenu/pkg/events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	Writer messageWriter
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// PublishOrderEvent keys messages by owner so one owner's events stay
// ordered within a partition.
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, evt events.OrderEvent) error {
	payload, err := events.Encode(evt)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OwnerID),
		Value: payload,
	})
}
