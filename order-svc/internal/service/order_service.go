package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/pkg/cart"
	"qrmenu/pkg/dashboard"
	"qrmenu/pkg/events"
	"qrmenu/pkg/httpx"
	"qrmenu/pkg/orderflow"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500

	// How long a duplicate submission waits for the first one to finish.
	ReplayWait   = 2 * time.Second
	replayPoll   = 50 * time.Millisecond
	afterTimeout = 5 * time.Second
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrTableNotFound     = errors.New("table not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrSubmitInProgress  = errors.New("this cart is already being submitted")
	ErrInvalidTransition = orderflow.ErrInvalidTransition
)

type OrderService struct {
	repository  OrderRepository
	idempotency IdempotencyStore
	publisher   OrderPublisher
	now         func() time.Time
}

func NewOrderService(repository OrderRepository, idempotency IdempotencyStore, publisher OrderPublisher) *OrderService {
	return &OrderService{
		repository:  repository,
		idempotency: idempotency,
		publisher:   publisher,
		now:         time.Now,
	}
}

func validate(v interface{}) error {
	if err := httpx.Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, httpx.ValidationMessage(err))
	}
	return nil
}

// Submit turns the customer's cart into a pending order for the table behind
// token. Prices and names come from the catalog, never from the request.
func (s *OrderService) Submit(ctx context.Context, token string, req domain.SubmitRequest) (*domain.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	payment, err := orderflow.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	table, err := s.repository.GetTableByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve table: %w", err)
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		existing, claimed, err := s.claim(ctx, table.OwnerID, token, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		if claimed {
			return s.submitClaimed(ctx, table, token, payment, req)
		}
	}
	return s.create(ctx, table, payment, req)
}

// submitClaimed creates the order for a key this call holds, then records it
// or hands the key back when nothing was created.
func (s *OrderService) submitClaimed(ctx context.Context, table *domain.Table, token string, payment orderflow.PaymentMethod, req domain.SubmitRequest) (*domain.Order, error) {
	order, err := s.create(ctx, table, payment, req)

	afterCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterTimeout)
	defer cancel()
	if err != nil {
		if rerr := s.idempotency.Release(afterCtx, token, req.IdempotencyKey); rerr != nil {
			zap.L().Warn("failed to release idempotency key", zap.Error(rerr))
		}
		return nil, err
	}
	if err := s.idempotency.Remember(afterCtx, token, req.IdempotencyKey, order.ID); err != nil {
		zap.L().Warn("failed to store idempotency key", zap.String("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

func (s *OrderService) create(ctx context.Context, table *domain.Table, payment orderflow.PaymentMethod, req domain.SubmitRequest) (*domain.Order, error) {
	c, err := s.buildCart(ctx, table.OwnerID, req.Items)
	if err != nil {
		return nil, err
	}

	tableID, tableNumber := table.ID, table.Number
	order := &domain.Order{
		OwnerID:       table.OwnerID,
		TableID:       &tableID,
		TableNumber:   &tableNumber,
		Status:        orderflow.StatusPending,
		PaymentMethod: payment,
		CustomerNote:  req.CustomerNote,
		Total:         c.Total(),
	}
	for _, e := range c.Entries() {
		productID := e.Product.ID
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   &productID,
			ProductName: e.Product.Name,
			Quantity:    e.Quantity,
			Price:       e.Product.Price,
		})
	}

	if err := s.repository.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	zap.L().Info("order submitted",
		zap.String("order_id", order.ID),
		zap.String("owner_id", order.OwnerID),
		zap.Int("table_number", tableNumber),
		zap.Float64("total", order.Total),
	)

	s.publish(ctx, events.TypeOrderCreated, order)
	return order, nil
}

// claim takes the idempotency key or returns the order an earlier submission
// with it created. While that submission is still running it waits up to
// ReplayWait. A store that cannot be reached does not block ordering.
func (s *OrderService) claim(ctx context.Context, ownerID, token, key string) (*domain.Order, bool, error) {
	deadline := s.now().Add(ReplayWait)
	for {
		orderID, claimed, err := s.idempotency.Claim(ctx, token, key)
		if err != nil {
			zap.L().Warn("idempotency claim failed", zap.Error(err))
			return nil, false, nil
		}
		if claimed {
			return nil, true, nil
		}
		if orderID != "" {
			order, err := s.repository.GetOrder(ctx, ownerID, orderID)
			if err != nil {
				zap.L().Warn("recorded order could not be loaded", zap.String("order_id", orderID), zap.Error(err))
				return nil, false, nil
			}
			return order, false, nil
		}

		if !s.now().Before(deadline) {
			return nil, false, ErrSubmitInProgress
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(replayPoll):
		}
	}
}

func (s *OrderService) buildCart(ctx context.Context, ownerID string, lines []domain.SubmitLine) (*cart.Cart, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	products, err := s.repository.AvailableProducts(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]cart.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c := cart.New()
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s is not available", ErrValidation, l.ProductID)
		}
		c.Add(p)
		c.AdjustQuantity(p.ID, l.Quantity-1)
	}
	if c.Empty() {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	return c, nil
}

// UpdateStatus moves an order along the status graph. The row stays locked
// from read to write so two operators cannot interleave.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, orderID, target string) (*domain.Order, error) {
	next, err := orderflow.ParseStatus(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	order, changed, err := s.repository.TransitionOrder(ctx, ownerID, orderID,
		func(current orderflow.Status) (orderflow.Status, bool, error) {
			return orderflow.Apply(current, next)
		})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if changed {
		zap.L().Info("order status changed",
			zap.String("order_id", order.ID),
			zap.String("status", string(order.Status)),
		)
		s.publish(ctx, events.TypeOrderStatusChanged, order)
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, ownerID string, filter domain.ListFilter) ([]domain.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	orders, err := s.repository.ListOrders(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	if filter.ActiveOnly {
		orders = dashboard.FilterActive(orders, func(o domain.Order) orderflow.Status { return o.Status })
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	order, err := s.repository.GetOrder(ctx, ownerID, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// publish is fire-and-forget: the order is already committed, so a caller
// that hangs up must not take the event with it.
func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterTimeout)
	defer cancel()
	evt := events.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		OwnerID:       order.OwnerID,
		TableNumber:   order.TableNumber,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		CustomerNote:  order.CustomerNote,
		Total:         order.Total,
		CreatedAt:     order.CreatedAt,
		OccurredAt:    s.now(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, evt); err != nil {
		zap.L().Warn("failed to publish order event",
			zap.String("type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
