package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/order-svc/internal/service"
	"qrmenu/pkg/cart"
	"qrmenu/pkg/events"
)

type OrderRepository struct {
	mock.Mock
}

func NewOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *OrderRepository) GetTableByToken(ctx context.Context, token string) (*domain.Table, error) {
	ret := _m.Called(ctx, token)
	var r0 *domain.Table
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Table)
	}
	return r0, ret.Error(1)
}

func (_m *OrderRepository) AvailableProducts(ctx context.Context, ownerID string, ids []string) ([]cart.Product, error) {
	ret := _m.Called(ctx, ownerID, ids)
	var r0 []cart.Product
	if v := ret.Get(0); v != nil {
		r0 = v.([]cart.Product)
	}
	return r0, ret.Error(1)
}

func (_m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	ret := _m.Called(ctx, order)
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Order) error); ok {
		return rf(ctx, order)
	}
	return ret.Error(0)
}

func (_m *OrderRepository) TransitionOrder(ctx context.Context, ownerID, orderID string, next service.TransitionFunc) (*domain.Order, bool, error) {
	ret := _m.Called(ctx, ownerID, orderID, next)
	if rf, ok := ret.Get(0).(func(context.Context, string, string, service.TransitionFunc) (*domain.Order, bool, error)); ok {
		return rf(ctx, ownerID, orderID, next)
	}
	var r0 *domain.Order
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Order)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *OrderRepository) ListOrders(ctx context.Context, ownerID string, limit int) ([]domain.Order, error) {
	ret := _m.Called(ctx, ownerID, limit)
	var r0 []domain.Order
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderRepository) GetOrder(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	ret := _m.Called(ctx, ownerID, orderID)
	var r0 *domain.Order
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Order)
	}
	return r0, ret.Error(1)
}

type IdempotencyStore struct {
	mock.Mock
}

func NewIdempotencyStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *IdempotencyStore {
	m := &IdempotencyStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *IdempotencyStore) Claim(ctx context.Context, token, key string) (string, bool, error) {
	ret := _m.Called(ctx, token, key)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

func (_m *IdempotencyStore) Release(ctx context.Context, token, key string) error {
	ret := _m.Called(ctx, token, key)
	return ret.Error(0)
}

func (_m *IdempotencyStore) Remember(ctx context.Context, token, key, orderID string) error {
	ret := _m.Called(ctx, token, key, orderID)
	return ret.Error(0)
}

type OrderPublisher struct {
	mock.Mock
}

func NewOrderPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderPublisher {
	m := &OrderPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *OrderPublisher) PublishOrderEvent(ctx context.Context, evt events.OrderEvent) error {
	ret := _m.Called(ctx, evt)
	return ret.Error(0)
}
