package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/pkg/dashboard"
	"qrmenu/pkg/plan"
)

type AnalyticsStore struct {
	mock.Mock
}

func NewAnalyticsStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *AnalyticsStore {
	m := &AnalyticsStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *AnalyticsStore) RecentOrders(ctx context.Context, ownerID string, limit int) ([]dashboard.Order, error) {
	ret := _m.Called(ctx, ownerID, limit)
	var r0 []dashboard.Order
	if v := ret.Get(0); v != nil {
		r0 = v.([]dashboard.Order)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsStore) TopProducts(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, error) {
	ret := _m.Called(ctx, ownerID, limit)
	var r0 []domain.TopProduct
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.TopProduct)
	}
	return r0, ret.Error(1)
}

func (_m *AnalyticsStore) PlanOf(ctx context.Context, ownerID string) (plan.Plan, error) {
	ret := _m.Called(ctx, ownerID)
	return ret.Get(0).(plan.Plan), ret.Error(1)
}

type AnalyticsCache struct {
	mock.Mock
}

func NewAnalyticsCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *AnalyticsCache {
	m := &AnalyticsCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *AnalyticsCache) GetPlan(ctx context.Context, ownerID string) (plan.Plan, bool, error) {
	ret := _m.Called(ctx, ownerID)
	return ret.Get(0).(plan.Plan), ret.Bool(1), ret.Error(2)
}

func (_m *AnalyticsCache) SetPlan(ctx context.Context, ownerID string, p plan.Plan) error {
	ret := _m.Called(ctx, ownerID, p)
	return ret.Error(0)
}

func (_m *AnalyticsCache) GetTop(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, bool, error) {
	ret := _m.Called(ctx, ownerID, limit)
	var r0 []domain.TopProduct
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.TopProduct)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *AnalyticsCache) SetTop(ctx context.Context, ownerID string, top []domain.TopProduct) error {
	ret := _m.Called(ctx, ownerID, top)
	return ret.Error(0)
}
