package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/pkg/plan"
)

type CategoryRepository struct {
	mock.Mock
}

func (_m *CategoryRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	ret := _m.Called(ctx, c)
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Category) error); ok {
		return rf(ctx, c)
	}
	return ret.Error(0)
}

func (_m *CategoryRepository) CountCategories(ctx context.Context, ownerID string) (int, error) {
	ret := _m.Called(ctx, ownerID)
	return ret.Int(0), ret.Error(1)
}

func (_m *CategoryRepository) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	ret := _m.Called(ctx, ownerID)
	var r0 []domain.Category
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Category)
	}
	return r0, ret.Error(1)
}

func (_m *CategoryRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	ret := _m.Called(ctx, c)
	return ret.Error(0)
}

func (_m *CategoryRepository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	ret := _m.Called(ctx, ownerID, id)
	return ret.Error(0)
}

type ProductRepository struct {
	mock.Mock
}

func (_m *ProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	ret := _m.Called(ctx, p)
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Product) error); ok {
		return rf(ctx, p)
	}
	return ret.Error(0)
}

func (_m *ProductRepository) CountProducts(ctx context.Context, ownerID string) (int, error) {
	ret := _m.Called(ctx, ownerID)
	return ret.Int(0), ret.Error(1)
}

func (_m *ProductRepository) ListProducts(ctx context.Context, ownerID string, availableOnly bool) ([]domain.Product, error) {
	ret := _m.Called(ctx, ownerID, availableOnly)
	var r0 []domain.Product
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Product)
	}
	return r0, ret.Error(1)
}

func (_m *ProductRepository) GetProduct(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	ret := _m.Called(ctx, ownerID, id)
	var r0 *domain.Product
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Product)
	}
	return r0, ret.Error(1)
}

func (_m *ProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	ret := _m.Called(ctx, p)
	return ret.Error(0)
}

func (_m *ProductRepository) DeleteProduct(ctx context.Context, ownerID, id string) error {
	ret := _m.Called(ctx, ownerID, id)
	return ret.Error(0)
}

func (_m *ProductRepository) UpdateProductImage(ctx context.Context, ownerID, id, imageURL string) error {
	ret := _m.Called(ctx, ownerID, id, imageURL)
	return ret.Error(0)
}

type TableRepository struct {
	mock.Mock
}

func (_m *TableRepository) GenerateTables(ctx context.Context, ownerID string, n int, newToken func() string) ([]domain.Table, error) {
	ret := _m.Called(ctx, ownerID, n, newToken)
	if rf, ok := ret.Get(0).(func(context.Context, string, int, func() string) []domain.Table); ok {
		return rf(ctx, ownerID, n, newToken), ret.Error(1)
	}
	var r0 []domain.Table
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Table)
	}
	return r0, ret.Error(1)
}

func (_m *TableRepository) ListTables(ctx context.Context, ownerID string) ([]domain.Table, error) {
	ret := _m.Called(ctx, ownerID)
	var r0 []domain.Table
	if v := ret.Get(0); v != nil {
		r0 = v.([]domain.Table)
	}
	return r0, ret.Error(1)
}

func (_m *TableRepository) GetTable(ctx context.Context, ownerID, id string) (*domain.Table, error) {
	ret := _m.Called(ctx, ownerID, id)
	var r0 *domain.Table
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Table)
	}
	return r0, ret.Error(1)
}

func (_m *TableRepository) GetTableByToken(ctx context.Context, token string) (*domain.Table, error) {
	ret := _m.Called(ctx, token)
	var r0 *domain.Table
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Table)
	}
	return r0, ret.Error(1)
}

func (_m *TableRepository) DeleteTable(ctx context.Context, ownerID, id string) (*domain.Table, error) {
	ret := _m.Called(ctx, ownerID, id)
	var r0 *domain.Table
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Table)
	}
	return r0, ret.Error(1)
}

type ProfileRepository struct {
	mock.Mock
}

func (_m *ProfileRepository) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	ret := _m.Called(ctx, ownerID)
	var r0 *domain.Profile
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.Profile)
	}
	return r0, ret.Error(1)
}

func (_m *ProfileRepository) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	ret := _m.Called(ctx, p)
	return ret.Error(0)
}

func (_m *ProfileRepository) UpdateTheme(ctx context.Context, ownerID string, theme plan.Theme) error {
	ret := _m.Called(ctx, ownerID, theme)
	return ret.Error(0)
}

func (_m *ProfileRepository) UpdateLogo(ctx context.Context, ownerID, logoURL string) error {
	ret := _m.Called(ctx, ownerID, logoURL)
	return ret.Error(0)
}
