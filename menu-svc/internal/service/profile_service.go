package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/pkg/plan"
)

type ProfileService struct {
	repo    ProfileRepository
	cache   MenuCache
	objects ObjectStore
}

func NewProfileService(repo ProfileRepository, cache MenuCache, objects ObjectStore) *ProfileService {
	return &ProfileService{repo: repo, cache: cache, objects: objects}
}

func (s *ProfileService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOwner(ctx, ownerID); err != nil {
		zap.L().Warn("menu cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// Get returns the stored profile, or the defaults for an owner that has
// not saved one yet.
func (s *ProfileService) Get(ctx context.Context, ownerID string) (*domain.Profile, error) {
	p, err := s.repo.GetProfile(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Profile{
			OwnerID:          ownerID,
			SubscriptionPlan: plan.Basic,
			MenuTheme:        plan.ThemeDefault,
		}, nil
	}
	return p, err
}

func (s *ProfileService) Update(ctx context.Context, ownerID string, in domain.ProfileInput) (*domain.Profile, error) {
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	if err := validate(in); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	p.RestaurantName = in.RestaurantName
	p.RestaurantDescription = in.RestaurantDescription

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return p, nil
}

// SetTheme is a premium feature; the plan is checked here so the gate
// holds for any client.
func (s *ProfileService) SetTheme(ctx context.Context, ownerID, theme string) (*domain.Profile, error) {
	t, err := plan.ParseTheme(theme)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	p, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := plan.Require(p.SubscriptionPlan, plan.FeatureThemes); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTheme(ctx, ownerID, t); err != nil {
		return nil, err
	}
	p.MenuTheme = t
	s.invalidate(ctx, ownerID)
	return p, nil
}

func (s *ProfileService) UploadLogo(ctx context.Context, ownerID string, img Image) (string, error) {
	key, err := img.objectKey(ownerID, "logo")
	if err != nil {
		return "", err
	}
	url, err := s.objects.Upload(ctx, key, img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("upload logo: %w", err)
	}
	if err := s.repo.UpdateLogo(ctx, ownerID, url); err != nil {
		return "", err
	}
	s.invalidate(ctx, ownerID)
	return url, nil
}
