package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"qrmenu/menu-svc/internal/domain"
	"qrmenu/pkg/plan"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Constraint)
	}
	return err
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return mapErr(r.DB.QueryRowContext(ctx,
		"INSERT INTO categories (user_id, name, sort_order) VALUES ($1, $2, $3) RETURNING id, created_at",
		c.OwnerID, c.Name, c.SortOrder,
	).Scan(&c.ID, &c.CreatedAt))
}

func (r *PostgresRepository) CountCategories(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE user_id = $1", ownerID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, name, sort_order, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY sort_order, created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory keeps the stored sort order when c.SortOrder is negative.
func (r *PostgresRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return mapErr(r.DB.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, sort_order = CASE WHEN $2::int < 0 THEN sort_order ELSE $2::int END
		WHERE id = $3 AND user_id = $4
		RETURNING sort_order, created_at`,
		c.Name, c.SortOrder, c.ID, c.OwnerID,
	).Scan(&c.SortOrder, &c.CreatedAt))
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET category_id = NULL WHERE category_id = $1 AND user_id = $2",
		id, ownerID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

const productColumns = `id, user_id, category_id, name, description, price, available, image_url, sort_order, created_at`

func scanProduct(row interface{ Scan(...any) error }, p *domain.Product) error {
	var categoryID, description, imageURL sql.NullString
	if err := row.Scan(&p.ID, &p.OwnerID, &categoryID, &p.Name, &description,
		&p.Price, &p.Available, &imageURL, &p.SortOrder, &p.CreatedAt); err != nil {
		return err
	}
	p.CategoryID = nullString(categoryID)
	p.Description = nullString(description)
	p.ImageURL = nullString(imageURL)
	return nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// CreateProduct only links a category owned by the same user. A foreign
// category id inserts nothing and reports ErrNotFound.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	return mapErr(r.DB.QueryRowContext(ctx, `
		INSERT INTO products (user_id, category_id, name, description, price, available, sort_order)
		SELECT $1, $2::uuid, $3, $4, $5, $6, $7
		WHERE $2::uuid IS NULL OR EXISTS (SELECT 1 FROM categories WHERE id = $2::uuid AND user_id = $1)
		RETURNING id, created_at`,
		p.OwnerID, p.CategoryID, p.Name, p.Description, p.Price, p.Available, p.SortOrder,
	).Scan(&p.ID, &p.CreatedAt))
}

func (r *PostgresRepository) CountProducts(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE user_id = $1", ownerID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) ListProducts(ctx context.Context, ownerID string, availableOnly bool) ([]domain.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE user_id = $1"
	if availableOnly {
		query += " AND available"
	}
	query += " ORDER BY sort_order, created_at"

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetProduct(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	var p domain.Product
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 AND user_id = $2", id, ownerID)
	if err := scanProduct(row, &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, category_id = $4::uuid, available = $5, sort_order = $6
		WHERE id = $7 AND user_id = $8
		  AND ($4::uuid IS NULL OR EXISTS (SELECT 1 FROM categories WHERE id = $4::uuid AND user_id = $8))`,
		p.Name, p.Description, p.Price, p.CategoryID, p.Available, p.SortOrder, p.ID, p.OwnerID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateProductImage(ctx context.Context, ownerID, id, imageURL string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET image_url = $1 WHERE id = $2 AND user_id = $3", imageURL, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GenerateTables numbers new tables after the owner's current maximum.
// The advisory lock serializes concurrent generations for one owner and
// UNIQUE(user_id, table_number) backs it up.
func (r *PostgresRepository) GenerateTables(ctx context.Context, ownerID string, n int, newToken func() string) ([]domain.Table, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", ownerID); err != nil {
		return nil, fmt.Errorf("lock tables: %w", err)
	}

	var last int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(table_number), 0) FROM restaurant_tables WHERE user_id = $1", ownerID,
	).Scan(&last); err != nil {
		return nil, err
	}

	values := make([]string, 0, n)
	args := []any{ownerID}
	for i := 1; i <= n; i++ {
		args = append(args, last+i, newToken())
		values = append(values, fmt.Sprintf("($1, $%d, $%d)", len(args)-1, len(args)))
	}

	rows, err := tx.QueryContext(ctx,
		"INSERT INTO restaurant_tables (user_id, table_number, qr_code_token) VALUES "+
			strings.Join(values, ", ")+
			" RETURNING id, user_id, table_number, qr_code_token, created_at",
		args...)
	if err != nil {
		return nil, mapErr(err)
	}

	tables := make([]domain.Table, 0, n)
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Number, &t.QRToken, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		tables = append(tables, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapErr(err)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, nil
}

func (r *PostgresRepository) ListTables(ctx context.Context, ownerID string) ([]domain.Table, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, table_number, qr_code_token, created_at
		FROM restaurant_tables
		WHERE user_id = $1
		ORDER BY table_number`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []domain.Table{}
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Number, &t.QRToken, &t.CreatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *PostgresRepository) GetTable(ctx context.Context, ownerID, id string) (*domain.Table, error) {
	var t domain.Table
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, table_number, qr_code_token, created_at
		FROM restaurant_tables
		WHERE id = $1 AND user_id = $2`, id, ownerID).
		Scan(&t.ID, &t.OwnerID, &t.Number, &t.QRToken, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *PostgresRepository) GetTableByToken(ctx context.Context, token string) (*domain.Table, error) {
	var t domain.Table
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, table_number, qr_code_token, created_at
		FROM restaurant_tables
		WHERE qr_code_token = $1`, token).
		Scan(&t.ID, &t.OwnerID, &t.Number, &t.QRToken, &t.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// DeleteTable detaches the table's orders first; they keep their stored
// table_number.
func (r *PostgresRepository) DeleteTable(ctx context.Context, ownerID, id string) (*domain.Table, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET table_id = NULL WHERE table_id = $1 AND restaurant_user_id = $2",
		id, ownerID); err != nil {
		return nil, err
	}

	var t domain.Table
	if err := tx.QueryRowContext(ctx, `
		DELETE FROM restaurant_tables
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, table_number, qr_code_token, created_at`, id, ownerID).
		Scan(&t.ID, &t.OwnerID, &t.Number, &t.QRToken, &t.CreatedAt); err != nil {
		return nil, mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error) {
	var p domain.Profile
	var description, logo sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id, restaurant_name, restaurant_description, logo_url, subscription_plan, menu_theme, updated_at
		FROM profiles
		WHERE user_id = $1`, ownerID).
		Scan(&p.OwnerID, &p.RestaurantName, &description, &logo, &p.SubscriptionPlan, &p.MenuTheme, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	p.RestaurantDescription = nullString(description)
	p.LogoURL = nullString(logo)
	return &p, nil
}

// UpsertProfile writes the editable fields. The subscription plan is never
// changed through this path.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, restaurant_name, restaurant_description)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET restaurant_name = EXCLUDED.restaurant_name,
		    restaurant_description = EXCLUDED.restaurant_description,
		    updated_at = now()
		RETURNING subscription_plan, menu_theme, updated_at`,
		p.OwnerID, p.RestaurantName, p.RestaurantDescription,
	).Scan(&p.SubscriptionPlan, &p.MenuTheme, &p.UpdatedAt)
}

func (r *PostgresRepository) UpdateTheme(ctx context.Context, ownerID string, theme plan.Theme) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles (user_id, menu_theme) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET menu_theme = EXCLUDED.menu_theme, updated_at = now()`,
		ownerID, string(theme))
	return err
}

func (r *PostgresRepository) UpdateLogo(ctx context.Context, ownerID, logoURL string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles (user_id, logo_url) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET logo_url = EXCLUDED.logo_url, updated_at = now()`,
		ownerID, logoURL)
	return err
}
