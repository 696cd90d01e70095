package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"qrmenu/menu-svc/internal/domain"
)

type CatalogService struct {
	categories CategoryRepository
	products   ProductRepository
	cache      MenuCache
	objects    ObjectStore
}

func NewCatalogService(categories CategoryRepository, products ProductRepository, cache MenuCache, objects ObjectStore) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		cache:      cache,
		objects:    objects,
	}
}

// invalidate drops every cached public menu of the owner. A failed
// invalidation only means a stale menu until the TTL runs out.
func (s *CatalogService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOwner(ctx, ownerID); err != nil {
		zap.L().Warn("menu cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, ownerID string, in domain.CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	c := &domain.Category{OwnerID: ownerID, Name: in.Name}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	} else {
		count, err := s.categories.CountCategories(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("count categories: %w", err)
		}
		c.SortOrder = count
	}

	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx, ownerID)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, ownerID, id string, in domain.CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	c := &domain.Category{ID: id, OwnerID: ownerID, Name: in.Name, SortOrder: -1}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return c, nil
}

// DeleteCategory never removes products; they become uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, ownerID, id string) error {
	if err := s.categories.DeleteCategory(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, ownerID string, in domain.ProductInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	p := &domain.Product{
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		CategoryID:  in.CategoryID,
		Available:   true,
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if in.SortOrder != nil {
		p.SortOrder = *in.SortOrder
	} else {
		count, err := s.products.CountProducts(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("count products: %w", err)
		}
		p.SortOrder = count
	}

	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error) {
	return s.products.ListProducts(ctx, ownerID, false)
}

func (s *CatalogService) GetProduct(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	return s.products.GetProduct(ctx, ownerID, id)
}

// UpdateProduct only touches the live catalog row. Orders already placed
// keep their own copy of name and price.
func (s *CatalogService) UpdateProduct(ctx context.Context, ownerID, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := validate(patch); err != nil {
		return nil, err
	}

	p, err := s.products.GetProduct(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ClearCategory {
		p.CategoryID = nil
	} else if patch.CategoryID != nil {
		p.CategoryID = patch.CategoryID
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	if patch.SortOrder != nil {
		p.SortOrder = *patch.SortOrder
	}

	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, ownerID, id string) error {
	if err := s.products.DeleteProduct(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *CatalogService) UploadProductImage(ctx context.Context, ownerID, id string, img Image) (string, error) {
	if _, err := s.products.GetProduct(ctx, ownerID, id); err != nil {
		return "", err
	}

	key, err := img.objectKey(ownerID, "products")
	if err != nil {
		return "", err
	}
	url, err := s.objects.Upload(ctx, key, img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("upload product image: %w", err)
	}

	if err := s.products.UpdateProductImage(ctx, ownerID, id, url); err != nil {
		return "", err
	}
	s.invalidate(ctx, ownerID)
	return url, nil
}
