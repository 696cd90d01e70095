package domain

import (
	"errors"
	"time"

	"qrmenu/pkg/orderflow"
)

var ErrNotFound = errors.New("not found")

// Table is the slice of a restaurant table an order needs.
type Table struct {
	ID      string
	OwnerID string
	Number  int
}

// Order is a submitted cart. Items carry the product name and price as they
// were at submission time.
type Order struct {
	ID            string                  `json:"id"`
	OwnerID       string                  `json:"restaurant_user_id"`
	TableID       *string                 `json:"table_id"`
	TableNumber   *int                    `json:"table_number"`
	Status        orderflow.Status        `json:"status"`
	PaymentMethod orderflow.PaymentMethod `json:"payment_method"`
	CustomerNote  *string                 `json:"customer_note"`
	Total         float64                 `json:"total"`
	Items         []OrderItem             `json:"items"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   *string `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type SubmitLine struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

type SubmitRequest struct {
	Items          []SubmitLine `json:"items" validate:"required,min=1,max=100,dive"`
	PaymentMethod  string       `json:"payment_method" validate:"required"`
	CustomerNote   *string      `json:"customer_note" validate:"omitempty,max=500"`
	IdempotencyKey string       `json:"idempotency_key" validate:"omitempty,max=100"`
}

type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

type ListFilter struct {
	Limit      int
	ActiveOnly bool
}
