package hub

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qrmenu/pkg/events"
)

const DefaultBuffer = 16

// Subscription is one open dashboard connection of an owner.
type Subscription struct {
	id      string
	ownerID string
	ch      chan events.OrderEvent
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) OwnerID() string {
	return s.ownerID
}

// Events is closed once the subscription is removed or the hub shuts down.
func (s *Subscription) Events() <-chan events.OrderEvent {
	return s.ch
}

// Hub fans order events out to the subscriptions of the owner they belong
// to. A subscriber that is not keeping up loses events; nothing is queued
// beyond its buffer and nothing is replayed.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*Subscription
	buffer  int
	closed  bool
	dropped atomic.Int64
}

func New(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe(ownerID string) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		ownerID: ownerID,
		ch:      make(chan events.OrderEvent, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe may be called any number of times, before or after Close.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.ch)
}

// Publish returns how many subscriptions received evt.
func (h *Hub) Publish(evt events.OrderEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs {
		if sub.ownerID != evt.OwnerID {
			continue
		}
		select {
		case sub.ch <- evt:
			delivered++
		default:
			h.dropped.Add(1)
			zap.L().Warn("feed subscriber is behind, dropping event",
				zap.String("subscription_id", sub.id),
				zap.String("order_id", evt.OrderID),
			)
		}
	}
	return delivered
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close ends every subscription. Later subscriptions start out closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
