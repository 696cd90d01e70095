package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/pkg/plan"
)

type MenuService struct {
	tables     TableRepository
	categories CategoryRepository
	products   ProductRepository
	profiles   ProfileRepository
	cache      MenuCache
	currency   string
}

func NewMenuService(tables TableRepository, categories CategoryRepository, products ProductRepository,
	profiles ProfileRepository, cache MenuCache, currency string) *MenuService {
	return &MenuService{
		tables:     tables,
		categories: categories,
		products:   products,
		profiles:   profiles,
		cache:      cache,
		currency:   currency,
	}
}

// Resolve maps a scanned table token to the owner's public menu. Only
// available products are exposed. An unknown token yields ErrMenuNotFound.
func (s *MenuService) Resolve(ctx context.Context, token string) (*domain.PublicMenu, error) {
	if token == "" {
		return nil, ErrMenuNotFound
	}

	if s.cache != nil {
		menu, ok, err := s.cache.GetMenu(ctx, token)
		if err != nil {
			zap.L().Warn("menu cache read failed", zap.Error(err))
		} else if ok {
			return menu, nil
		}
	}

	table, err := s.tables.GetTableByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, err
	}

	owner := table.OwnerID
	menu := &domain.PublicMenu{
		Table: domain.PublicTable{ID: table.ID, Number: table.Number},
		Profile: domain.PublicProfile{
			MenuTheme: plan.ThemeDefault,
			Currency:  s.currency,
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetProfile(gctx, owner)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		menu.Profile.RestaurantName = p.RestaurantName
		menu.Profile.RestaurantDescription = p.RestaurantDescription
		menu.Profile.LogoURL = p.LogoURL
		menu.Profile.MenuTheme = p.MenuTheme
		return nil
	})
	g.Go(func() error {
		categories, err := s.categories.ListCategories(gctx, owner)
		if err != nil {
			return err
		}
		menu.Categories = categories
		return nil
	})
	g.Go(func() error {
		products, err := s.products.ListProducts(gctx, owner, true)
		if err != nil {
			return err
		}
		menu.Products = products
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if menu.Categories == nil {
		menu.Categories = []domain.Category{}
	}
	if menu.Products == nil {
		menu.Products = []domain.Product{}
	}

	if s.cache != nil {
		if err := s.cache.SetMenu(ctx, owner, token, menu); err != nil {
			zap.L().Warn("menu cache write failed", zap.Error(err))
		}
	}
	return menu, nil
}
