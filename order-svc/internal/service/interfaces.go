package service

import (
	"context"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/pkg/cart"
	"qrmenu/pkg/events"
	"qrmenu/pkg/orderflow"
)

type OrderServiceInterface interface {
	Submit(ctx context.Context, token string, req domain.SubmitRequest) (*domain.Order, error)
	UpdateStatus(ctx context.Context, ownerID, orderID, target string) (*domain.Order, error)
	List(ctx context.Context, ownerID string, filter domain.ListFilter) ([]domain.Order, error)
	Get(ctx context.Context, ownerID, orderID string) (*domain.Order, error)
}

// TransitionFunc decides the next status of a locked order.
type TransitionFunc func(current orderflow.Status) (orderflow.Status, bool, error)

type OrderRepository interface {
	GetTableByToken(ctx context.Context, token string) (*domain.Table, error)
	AvailableProducts(ctx context.Context, ownerID string, ids []string) ([]cart.Product, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	TransitionOrder(ctx context.Context, ownerID, orderID string, next TransitionFunc) (*domain.Order, bool, error)
	ListOrders(ctx context.Context, ownerID string, limit int) ([]domain.Order, error)
	GetOrder(ctx context.Context, ownerID, orderID string) (*domain.Order, error)
}

// IdempotencyStore guards against a cart being submitted twice. Claim is
// atomic: exactly one caller gets claimed == true for a key.
type IdempotencyStore interface {
	Claim(ctx context.Context, token, key string) (orderID string, claimed bool, err error)
	Remember(ctx context.Context, token, key, orderID string) error
	Release(ctx context.Context, token, key string) error
}

type OrderPublisher interface {
	PublishOrderEvent(ctx context.Context, evt events.OrderEvent) error
}

var _ OrderServiceInterface = (*OrderService)(nil)
