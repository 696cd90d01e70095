package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"qrmenu/menu-svc/internal/domain"
)

type MenuCache struct {
	mock.Mock
}

func (_m *MenuCache) GetMenu(ctx context.Context, token string) (*domain.PublicMenu, bool, error) {
	ret := _m.Called(ctx, token)
	var r0 *domain.PublicMenu
	if v := ret.Get(0); v != nil {
		r0 = v.(*domain.PublicMenu)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *MenuCache) SetMenu(ctx context.Context, ownerID, token string, menu *domain.PublicMenu) error {
	ret := _m.Called(ctx, ownerID, token, menu)
	return ret.Error(0)
}

func (_m *MenuCache) InvalidateOwner(ctx context.Context, ownerID string) error {
	ret := _m.Called(ctx, ownerID)
	return ret.Error(0)
}

func (_m *MenuCache) InvalidateToken(ctx context.Context, ownerID, token string) error {
	ret := _m.Called(ctx, ownerID, token)
	return ret.Error(0)
}

type ObjectStore struct {
	mock.Mock
}

func (_m *ObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	ret := _m.Called(ctx, key, contentType, body)
	return ret.String(0), ret.Error(1)
}

type QRGenerator struct {
	mock.Mock
}

func (_m *QRGenerator) Generate(token string) ([]byte, error) {
	ret := _m.Called(token)
	var r0 []byte
	if v := ret.Get(0); v != nil {
		r0 = v.([]byte)
	}
	return r0, ret.Error(1)
}
