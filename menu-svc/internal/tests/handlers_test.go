package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "qrmenu/menu-svc/internal/api/http"
	"qrmenu/menu-svc/internal/domain"
	"qrmenu/menu-svc/internal/mocks"
	"qrmenu/menu-svc/internal/service"
	"qrmenu/pkg/httpx"
	"qrmenu/pkg/plan"
)

type menuFixture struct {
	categories *mocks.CategoryRepository
	products   *mocks.ProductRepository
	tables     *mocks.TableRepository
	profiles   *mocks.ProfileRepository
	cache      *mocks.MenuCache
	objects    *mocks.ObjectStore
	router     *mux.Router
}

func newMenuFixture() *menuFixture {
	f := &menuFixture{
		categories: new(mocks.CategoryRepository),
		products:   new(mocks.ProductRepository),
		tables:     new(mocks.TableRepository),
		profiles:   new(mocks.ProfileRepository),
		cache:      new(mocks.MenuCache),
		objects:    new(mocks.ObjectStore),
	}
	f.cache.On("InvalidateOwner", mock.Anything, mock.Anything).Return(nil).Maybe()

	handler := httpapi.NewHandler(
		service.NewCatalogService(f.categories, f.products, f.cache, f.objects),
		service.NewTableService(f.tables, f.cache, service.DefaultQRGenerator{BaseURL: "http://localhost"}),
		service.NewProfileService(f.profiles, f.cache, f.objects),
		service.NewMenuService(f.tables, f.categories, f.products, f.profiles, nil, "RSD"),
	)
	f.router = mux.NewRouter()
	handler.RegisterRoutes(f.router)
	return f
}

func (f *menuFixture) do(method, path, owner string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(httpx.OwnerHeader, owner)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	f := newMenuFixture()

	w := f.do("GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "menu-svc", body["service"])
}

func TestPublicMenuHandler(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		setupMock func(f *menuFixture)
		wantCode  int
		wantError string
	}{
		{
			name:  "unknown token",
			token: "missing",
			setupMock: func(f *menuFixture) {
				f.tables.On("GetTableByToken", mock.Anything, "missing").Return(nil, domain.ErrNotFound).Once()
			},
			wantCode:  http.StatusNotFound,
			wantError: "menu not found",
		},
		{
			name:  "known token",
			token: "T1",
			setupMock: func(f *menuFixture) {
				f.tables.On("GetTableByToken", mock.Anything, "T1").
					Return(&domain.Table{ID: "t4", OwnerID: "u1", Number: 4, QRToken: "T1"}, nil).Once()
				f.profiles.On("GetProfile", mock.Anything, "u1").Return(nil, domain.ErrNotFound).Once()
				f.categories.On("ListCategories", mock.Anything, "u1").Return([]domain.Category{}, nil).Once()
				f.products.On("ListProducts", mock.Anything, "u1", true).
					Return([]domain.Product{{ID: "p1", Name: "Burger", Price: 800, Available: true}}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name:  "database error",
			token: "T2",
			setupMock: func(f *menuFixture) {
				f.tables.On("GetTableByToken", mock.Anything, "T2").Return(nil, errors.New("db down")).Once()
			},
			wantCode:  http.StatusInternalServerError,
			wantError: "internal error",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newMenuFixture()
			testCase.setupMock(f)

			w := f.do("GET", "/api/menu/"+testCase.token, "", nil)

			assert.Equal(t, testCase.wantCode, w.Code)
			if testCase.wantError != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, testCase.wantError, body["error"])
			} else {
				var menu domain.PublicMenu
				require.NoError(t, json.NewDecoder(w.Body).Decode(&menu))
				assert.Equal(t, 4, menu.Table.Number)
				assert.Equal(t, "RSD", menu.Profile.Currency)
				assert.Len(t, menu.Products, 1)
			}
		})
	}
}

func TestCreateCategoryHandler(t *testing.T) {
	tests := []struct {
		name      string
		owner     string
		body      string
		setupMock func(f *menuFixture)
		wantCode  int
	}{
		{
			name:  "valid request",
			owner: "u1",
			body:  `{"name":"Drinks","sort_order":0}`,
			setupMock: func(f *menuFixture) {
				f.categories.On("CreateCategory", mock.Anything, mock.AnythingOfType("*domain.Category")).Return(nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name:      "missing owner",
			body:      `{"name":"Drinks"}`,
			setupMock: func(f *menuFixture) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:      "invalid JSON",
			owner:     "u1",
			body:      `{invalid}`,
			setupMock: func(f *menuFixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "validation error",
			owner:     "u1",
			body:      `{"name":""}`,
			setupMock: func(f *menuFixture) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newMenuFixture()
			testCase.setupMock(f)

			w := f.do("POST", "/api/categories", testCase.owner, []byte(testCase.body))

			assert.Equal(t, testCase.wantCode, w.Code)
			f.categories.AssertExpectations(t)
		})
	}
}

func TestDeleteProductHandler(t *testing.T) {
	tests := []struct {
		name      string
		mockError error
		wantCode  int
	}{
		{name: "deleted", wantCode: http.StatusNoContent},
		{name: "other owner's product", mockError: domain.ErrNotFound, wantCode: http.StatusNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newMenuFixture()
			f.products.On("DeleteProduct", mock.Anything, "u1", "p1").Return(testCase.mockError).Once()

			w := f.do("DELETE", "/api/products/p1", "u1", nil)

			assert.Equal(t, testCase.wantCode, w.Code)
			f.products.AssertExpectations(t)
		})
	}
}

func TestGenerateTablesHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		mockError error
		wantCode  int
	}{
		{name: "valid count", body: `{"count":2}`, wantCode: http.StatusCreated},
		{name: "zero count", body: `{"count":0}`, wantCode: http.StatusBadRequest},
		{name: "concurrent generation conflict", body: `{"count":2}`, mockError: domain.ErrConflict, wantCode: http.StatusConflict},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newMenuFixture()
			f.tables.On("GenerateTables", mock.Anything, "u1", 2, mock.Anything).
				Return([]domain.Table{{Number: 1}, {Number: 2}}, testCase.mockError).Maybe()

			w := f.do("POST", "/api/tables", "u1", []byte(testCase.body))

			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestTableQRCodeHandler(t *testing.T) {
	f := newMenuFixture()
	f.tables.On("GetTable", mock.Anything, "u1", "t1").Return(&domain.Table{ID: "t1", QRToken: "tok"}, nil).Once()

	w := f.do("GET", "/api/tables/t1/qrcode", "u1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestUpdateThemeHandler(t *testing.T) {
	tests := []struct {
		name     string
		plan     plan.Plan
		body     string
		wantCode int
	}{
		{name: "premium", plan: plan.Premium, body: `{"menu_theme":"ocean"}`, wantCode: http.StatusOK},
		{name: "basic is forbidden", plan: plan.Basic, body: `{"menu_theme":"ocean"}`, wantCode: http.StatusForbidden},
		{name: "unknown theme", plan: plan.Premium, body: `{"menu_theme":"neon"}`, wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newMenuFixture()
			f.profiles.On("GetProfile", mock.Anything, "u1").
				Return(&domain.Profile{OwnerID: "u1", SubscriptionPlan: testCase.plan}, nil).Maybe()
			f.profiles.On("UpdateTheme", mock.Anything, "u1", plan.ThemeOcean).Return(nil).Maybe()

			w := f.do("PUT", "/api/profile/theme", "u1", []byte(testCase.body))

			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestUploadLogoHandler(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantCode    int
	}{
		{name: "png", contentType: "image/png", wantCode: http.StatusOK},
		{name: "text file", contentType: "text/plain", wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newMenuFixture()
			f.objects.On("Upload", mock.Anything, mock.Anything, "image/png", mock.Anything).
				Return("https://cdn/logo.png", nil).Maybe()
			f.profiles.On("UpdateLogo", mock.Anything, "u1", "https://cdn/logo.png").Return(nil).Maybe()

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			hdr := textproto.MIMEHeader{}
			hdr.Set("Content-Disposition", `form-data; name="image"; filename="logo.png"`)
			hdr.Set("Content-Type", testCase.contentType)
			part, err := mw.CreatePart(hdr)
			require.NoError(t, err)
			part.Write([]byte("fake image"))
			require.NoError(t, mw.Close())

			req := httptest.NewRequest("POST", "/api/profile/logo", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set(httpx.OwnerHeader, "u1")
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}
