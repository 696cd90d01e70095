package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/order-svc/internal/service"
	"qrmenu/pkg/cart"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

const orderColumns = `id, restaurant_user_id, table_id, table_number, status, payment_method, customer_note, total, created_at, updated_at`

// invalidTextRepresentation is what Postgres returns when an id is not a uuid.
const invalidTextRepresentation = "22P02"

// missing reports whether err means the row cannot exist: no match, or an id
// that is not even well formed.
func missing(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner, o *domain.Order) error {
	var tableID, note sql.NullString
	var tableNumber sql.NullInt64
	if err := row.Scan(&o.ID, &o.OwnerID, &tableID, &tableNumber, &o.Status, &o.PaymentMethod,
		&note, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}
	if tableID.Valid {
		o.TableID = &tableID.String
	}
	if tableNumber.Valid {
		n := int(tableNumber.Int64)
		o.TableNumber = &n
	}
	if note.Valid {
		o.CustomerNote = &note.String
	}
	return nil
}

func (r *PostgresRepository) GetTableByToken(ctx context.Context, token string) (*domain.Table, error) {
	var t domain.Table
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, table_number FROM restaurant_tables WHERE qr_code_token = $1", token).
		Scan(&t.ID, &t.OwnerID, &t.Number)
	if missing(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AvailableProducts returns the owner's orderable products among ids.
// Unknown, hidden and foreign products are simply absent from the result.
func (r *PostgresRepository) AvailableProducts(ctx context.Context, ownerID string, ids []string) ([]cart.Product, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, price
		FROM products
		WHERE user_id = $1 AND available AND id = ANY($2::uuid[])`,
		ownerID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []cart.Product
	for rows.Next() {
		var p cart.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateOrder writes the order and all its items in one transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (restaurant_user_id, table_id, table_number, status, payment_method, customer_note, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		order.OwnerID, order.TableID, order.TableNumber, string(order.Status),
		string(order.PaymentMethod), order.CustomerNote, order.Total,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, price, line_no)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.Price, i+1,
		).Scan(&item.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// TransitionOrder locks the order row, lets next decide the new status and
// writes it only when it changed.
func (r *PostgresRepository) TransitionOrder(ctx context.Context, ownerID, orderID string, next service.TransitionFunc) (*domain.Order, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var order domain.Order
	row := tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND restaurant_user_id = $2 FOR UPDATE",
		orderID, ownerID)
	if err := scanOrder(row, &order); err != nil {
		if missing(err) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, err
	}

	status, changed, err := next(order.Status)
	if err != nil {
		return nil, false, err
	}

	if changed {
		if err := tx.QueryRowContext(ctx,
			"UPDATE orders SET status = $1, updated_at = now() WHERE id = $2 RETURNING updated_at",
			string(status), order.ID,
		).Scan(&order.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("update order status: %w", err)
		}
		order.Status = status
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	items, err := r.items(ctx, []string{order.ID})
	if err != nil {
		return nil, false, err
	}
	order.Items = items[order.ID]
	return &order, changed, nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context, ownerID string, limit int) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE restaurant_user_id = $1 ORDER BY created_at DESC LIMIT $2",
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	ids := []string{}
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	var order domain.Order
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND restaurant_user_id = $2",
		orderID, ownerID)
	if err := scanOrder(row, &order); err != nil {
		if missing(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.items(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func (r *PostgresRepository) items(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, line_no`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		var productID sql.NullString
		if err := rows.Scan(&item.ID, &item.OrderID, &productID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		if productID.Valid {
			item.ProductID = &productID.String
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, rows.Err()
}

var _ service.OrderRepository = (*PostgresRepository)(nil)
