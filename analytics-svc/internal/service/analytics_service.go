package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/pkg/dashboard"
	"qrmenu/pkg/plan"
)

const (
	DefaultWindow   = 500
	DefaultTopLimit = 5
	MaxTopLimit     = 50
)

var ErrValidation = errors.New("validation failed")

type AnalyticsService struct {
	store  AnalyticsStore
	cache  AnalyticsCache
	window int
	loc    *time.Location
	now    func() time.Time
}

// NewAnalyticsService builds the dashboard analytics. window is how many of
// the most recent orders the summary is computed over.
func NewAnalyticsService(store AnalyticsStore, cache AnalyticsCache, window int) *AnalyticsService {
	if window <= 0 {
		window = DefaultWindow
	}
	return &AnalyticsService{
		store:  store,
		cache:  cache,
		window: window,
		loc:    time.UTC,
		now:    time.Now,
	}
}

// WithLocation sets the zone "today" is counted in when the caller names none.
func (s *AnalyticsService) WithLocation(loc *time.Location) *AnalyticsService {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

func (s *AnalyticsService) location(tz string) (*time.Location, error) {
	if tz == "" {
		return s.loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", ErrValidation, tz)
	}
	return loc, nil
}

// requirePremium checks the owner's plan on the server. The plan is cached
// briefly; a cache failure falls through to the database.
func (s *AnalyticsService) requirePremium(ctx context.Context, ownerID string) error {
	if s.cache != nil {
		p, ok, err := s.cache.GetPlan(ctx, ownerID)
		if err != nil {
			zap.L().Warn("plan cache read failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
		if ok {
			return plan.Require(p, plan.FeatureAnalytics)
		}
	}

	p, err := s.store.PlanOf(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetPlan(ctx, ownerID, p); err != nil {
			zap.L().Warn("plan cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
	return plan.Require(p, plan.FeatureAnalytics)
}

// Summary aggregates the owner's recent orders. tz is an IANA zone name for
// the restaurant's calendar day; empty means the configured default.
func (s *AnalyticsService) Summary(ctx context.Context, ownerID, tz string) (*dashboard.Summary, error) {
	loc, err := s.location(tz)
	if err != nil {
		return nil, err
	}
	if err := s.requirePremium(ctx, ownerID); err != nil {
		return nil, err
	}

	orders, err := s.store.RecentOrders(ctx, ownerID, s.window)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	summary := dashboard.Summarize(orders, s.now().In(loc))
	return &summary, nil
}

func (s *AnalyticsService) TopProducts(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, error) {
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 0 || limit > MaxTopLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxTopLimit)
	}
	if err := s.requirePremium(ctx, ownerID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		top, ok, err := s.cache.GetTop(ctx, ownerID, limit)
		if err != nil {
			zap.L().Warn("top products cache read failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
		if ok {
			return top, nil
		}
	}

	top, err := s.store.TopProducts(ctx, ownerID, MaxTopLimit)
	if err != nil {
		return nil, fmt.Errorf("load top products: %w", err)
	}
	if s.cache != nil && len(top) > 0 {
		if err := s.cache.SetTop(ctx, ownerID, top); err != nil {
			zap.L().Warn("top products cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
	if len(top) > limit {
		top = top[:limit]
	}
	if top == nil {
		top = []domain.TopProduct{}
	}
	return top, nil
}
