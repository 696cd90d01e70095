package storage

import (
	"context"
	"database/sql"
	"errors"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/analytics-svc/internal/service"
	"qrmenu/pkg/cart"
	"qrmenu/pkg/dashboard"
	"qrmenu/pkg/plan"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) RecentOrders(ctx context.Context, ownerID string, limit int) ([]dashboard.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, status, total, table_number, created_at
		FROM orders
		WHERE restaurant_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []dashboard.Order{}
	for rows.Next() {
		var o dashboard.Order
		var tableNumber sql.NullInt64
		if err := rows.Scan(&o.ID, &o.Status, &o.Total, &tableNumber, &o.CreatedAt); err != nil {
			return nil, err
		}
		if tableNumber.Valid {
			n := int(tableNumber.Int64)
			o.TableNumber = &n
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// TopProducts ranks item names by units sold over every non-cancelled order.
func (r *PostgresRepository) TopProducts(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT oi.product_name, SUM(oi.quantity) AS quantity, SUM(oi.quantity * oi.price) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.restaurant_user_id = $1 AND o.status <> 'cancelled'
		GROUP BY oi.product_name
		ORDER BY quantity DESC, oi.product_name
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []domain.TopProduct
	for rows.Next() {
		var p domain.TopProduct
		if err := rows.Scan(&p.ProductName, &p.Quantity, &p.Revenue); err != nil {
			return nil, err
		}
		p.Revenue = cart.RoundCents(p.Revenue)
		top = append(top, p)
	}
	return top, rows.Err()
}

// PlanOf treats an owner without a profile row as basic.
func (r *PostgresRepository) PlanOf(ctx context.Context, ownerID string) (plan.Plan, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx,
		"SELECT subscription_plan FROM profiles WHERE user_id = $1", ownerID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return plan.Basic, nil
	}
	if err != nil {
		return "", err
	}
	return plan.Parse(raw), nil
}

var _ service.AnalyticsStore = (*PostgresRepository)(nil)
