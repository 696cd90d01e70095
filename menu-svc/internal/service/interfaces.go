package service

import (
	"context"
	"io"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/pkg/plan"
)

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	CountCategories(ctx context.Context, ownerID string) (int, error)
	ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, ownerID, id string) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	CountProducts(ctx context.Context, ownerID string) (int, error)
	ListProducts(ctx context.Context, ownerID string, availableOnly bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, ownerID, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, ownerID, id string) error
	UpdateProductImage(ctx context.Context, ownerID, id, imageURL string) error
}

type TableRepository interface {
	GenerateTables(ctx context.Context, ownerID string, n int, newToken func() string) ([]domain.Table, error)
	ListTables(ctx context.Context, ownerID string) ([]domain.Table, error)
	GetTable(ctx context.Context, ownerID, id string) (*domain.Table, error)
	GetTableByToken(ctx context.Context, token string) (*domain.Table, error)
	DeleteTable(ctx context.Context, ownerID, id string) (*domain.Table, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, p *domain.Profile) error
	UpdateTheme(ctx context.Context, ownerID string, theme plan.Theme) error
	UpdateLogo(ctx context.Context, ownerID, logoURL string) error
}

type MenuCache interface {
	GetMenu(ctx context.Context, token string) (*domain.PublicMenu, bool, error)
	SetMenu(ctx context.Context, ownerID, token string, menu *domain.PublicMenu) error
	InvalidateOwner(ctx context.Context, ownerID string) error
	InvalidateToken(ctx context.Context, ownerID, token string) error
}

type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type QRGenerator interface {
	Generate(token string) ([]byte, error)
}

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, ownerID string, in domain.CategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, ownerID, id string, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id string) error
	CreateProduct(ctx context.Context, ownerID string, in domain.ProductInput) (*domain.Product, error)
	ListProducts(ctx context.Context, ownerID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, ownerID, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, ownerID, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, ownerID, id string) error
	UploadProductImage(ctx context.Context, ownerID, id string, img Image) (string, error)
}

type TableServiceInterface interface {
	Generate(ctx context.Context, ownerID string, n int) ([]domain.Table, error)
	List(ctx context.Context, ownerID string) ([]domain.Table, error)
	Delete(ctx context.Context, ownerID, id string) error
	QRCode(ctx context.Context, ownerID, id string) ([]byte, error)
}

type ProfileServiceInterface interface {
	Get(ctx context.Context, ownerID string) (*domain.Profile, error)
	Update(ctx context.Context, ownerID string, in domain.ProfileInput) (*domain.Profile, error)
	SetTheme(ctx context.Context, ownerID, theme string) (*domain.Profile, error)
	UploadLogo(ctx context.Context, ownerID string, img Image) (string, error)
}

type MenuServiceInterface interface {
	Resolve(ctx context.Context, token string) (*domain.PublicMenu, error)
}

var (
	_ CatalogServiceInterface = (*CatalogService)(nil)
	_ TableServiceInterface   = (*TableService)(nil)
	_ ProfileServiceInterface = (*ProfileService)(nil)
	_ MenuServiceInterface    = (*MenuService)(nil)
)
