package service

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"qrmenu/pkg/events"
)

const readBackoff = time.Second

type Consumer struct {
	Reader MessageReader
	Hub    Broadcaster
}

func NewConsumer(reader MessageReader, hub Broadcaster) *Consumer {
	return &Consumer{
		Reader: reader,
		Hub:    hub,
	}
}

// Start tails the orders topic until ctx is done.
func (c *Consumer) Start(ctx context.Context) {
	zap.L().Info("Starting order feed consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				zap.L().Info("Order feed consumer stopped")
				return
			}
			zap.L().Error("Error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(readBackoff):
			}
			continue
		}
		c.Process(message)
	}
}

// Process hands one message to the hub. It reports whether the message was
// an order event worth delivering.
func (c *Consumer) Process(msg kafka.Message) bool {
	evt, err := events.Decode(msg.Value)
	if err != nil {
		zap.L().Warn("Skipping malformed order event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return false
	}

	switch evt.Type {
	case events.TypeOrderCreated, events.TypeOrderStatusChanged:
	default:
		return false
	}

	delivered := c.Hub.Publish(evt)
	zap.L().Debug("Order event fanned out",
		zap.String("type", evt.Type),
		zap.String("order_id", evt.OrderID),
		zap.Int("subscribers", delivered),
	)
	return true
}
