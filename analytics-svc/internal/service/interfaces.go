package service

import (
	"context"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/pkg/dashboard"
	"qrmenu/pkg/plan"
)

type AnalyticsInterface interface {
	Summary(ctx context.Context, ownerID, tz string) (*dashboard.Summary, error)
	TopProducts(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, error)
}

type AnalyticsStore interface {
	RecentOrders(ctx context.Context, ownerID string, limit int) ([]dashboard.Order, error)
	TopProducts(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, error)
	PlanOf(ctx context.Context, ownerID string) (plan.Plan, error)
}

type AnalyticsCache interface {
	GetPlan(ctx context.Context, ownerID string) (plan.Plan, bool, error)
	SetPlan(ctx context.Context, ownerID string, p plan.Plan) error
	GetTop(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, bool, error)
	SetTop(ctx context.Context, ownerID string, top []domain.TopProduct) error
}

var _ AnalyticsInterface = (*AnalyticsService)(nil)
