package mocks

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"qrmenu/api-gateway/internal/auth"
	"qrmenu/pkg/plan"
)

type HTTPClient struct {
	mock.Mock
}

func NewHTTPClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *HTTPClient {
	m := &HTTPClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	ret := _m.Called(req)
	var r0 *http.Response
	if v := ret.Get(0); v != nil {
		r0 = v.(*http.Response)
	}
	return r0, ret.Error(1)
}

type UserStore struct {
	mock.Mock
}

func NewUserStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserStore {
	m := &UserStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *UserStore) CreateUser(ctx context.Context, user *auth.User, p plan.Plan) error {
	ret := _m.Called(ctx, user, p)
	if rf, ok := ret.Get(0).(func(context.Context, *auth.User, plan.Plan) error); ok {
		return rf(ctx, user, p)
	}
	return ret.Error(0)
}

func (_m *UserStore) ConfirmUser(ctx context.Context, token string) (string, error) {
	ret := _m.Called(ctx, token)
	return ret.String(0), ret.Error(1)
}

func (_m *UserStore) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	ret := _m.Called(ctx, email)
	var r0 *auth.User
	if v := ret.Get(0); v != nil {
		r0 = v.(*auth.User)
	}
	return r0, ret.Error(1)
}

type Denylist struct {
	mock.Mock
}

func NewDenylist(t interface {
	mock.TestingT
	Cleanup(func())
}) *Denylist {
	m := &Denylist{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	ret := _m.Called(ctx, tokenID, ttl)
	return ret.Error(0)
}

func (_m *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ret := _m.Called(ctx, tokenID)
	return ret.Bool(0), ret.Error(1)
}
