package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

var ErrMissingOwner = errors.New("event has no owner")

// OrderEvent is the message exchanged on the orders topic. It carries the
// full order row so subscribers never need a follow-up read.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	OwnerID       string    `json:"owner_id"`
	TableNumber   *int      `json:"table_number"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	CustomerNote  *string   `json:"customer_note"`
	Total         float64   `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func Encode(evt OrderEvent) ([]byte, error) {
	return json.Marshal(evt)
}

func Decode(data []byte) (OrderEvent, error) {
	var evt OrderEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if evt.OwnerID == "" {
		return OrderEvent{}, ErrMissingOwner
	}
	return evt, nil
}

// Notification is the one-line text shown to the dashboard operator.
func (e OrderEvent) Notification() string {
	table := "?"
	if e.TableNumber != nil {
		table = fmt.Sprintf("%d", *e.TableNumber)
	}
	switch e.Type {
	case TypeOrderCreated:
		return "New order! Table " + table
	case TypeOrderStatusChanged:
		return "Table " + table + " order is now " + e.Status
	}
	return "Table " + table
}
