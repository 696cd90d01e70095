package service

import (
	"context"

	"github.com/segmentio/kafka-go"

	"qrmenu/feed-svc/internal/hub"
	"qrmenu/pkg/events"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Broadcaster interface {
	Publish(evt events.OrderEvent) int
}

// FeedHub is what the SSE handler needs from the hub.
type FeedHub interface {
	Subscribe(ownerID string) *hub.Subscription
	Unsubscribe(sub *hub.Subscription)
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	Process(msg kafka.Message) bool
}

var (
	_ Broadcaster       = (*hub.Hub)(nil)
	_ FeedHub           = (*hub.Hub)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
)
