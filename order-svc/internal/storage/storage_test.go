package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu/order-svc/internal/domain"
	"qrmenu/pkg/events"
	"qrmenu/pkg/orderflow"
)

var orderRowColumns = []string{
	"id", "restaurant_user_id", "table_id", "table_number", "status", "payment_method",
	"customer_note", "total", "created_at", "updated_at",
}

var itemRowColumns = []string{"id", "order_id", "product_id", "product_name", "quantity", "price"}

func setupRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func newOrder() *domain.Order {
	tableID, number := "t4", 4
	burger, pizza := "p1", "p2"
	return &domain.Order{
		OwnerID:       "u1",
		TableID:       &tableID,
		TableNumber:   &number,
		Status:        orderflow.StatusPending,
		PaymentMethod: orderflow.PaymentCash,
		Total:         2800,
		Items: []domain.OrderItem{
			{ProductID: &burger, ProductName: "Burger", Quantity: 2, Price: 800},
			{ProductID: &pizza, ProductName: "Pizza", Quantity: 1, Price: 1200},
		},
	}
}

func TestCreateOrder_WritesOrderAndItemsInOneTx(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("u1", "t4", 4, "pending", "cash", nil, 2800.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("o1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs("o1", "p1", "Burger", 2, 800.0, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("i1"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs("o1", "p2", "Pizza", 1, 1200.0, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("i2"))
	mock.ExpectCommit()

	order := newOrder()
	err := repo.CreateOrder(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, "o1", order.Items[1].OrderID)
	assert.Equal(t, "i2", order.Items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_ItemFailureRollsBack(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("o1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("i1"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	err := repo.CreateOrder(context.Background(), newOrder())

	assert.ErrorContains(t, err, "insert order item")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrder(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	apply := func(target orderflow.Status) func(orderflow.Status) (orderflow.Status, bool, error) {
		return func(current orderflow.Status) (orderflow.Status, bool, error) {
			return orderflow.Apply(current, target)
		}
	}

	tests := []struct {
		name          string
		current       string
		target        orderflow.Status
		prepareMocks  func(mock sqlmock.Sqlmock)
		wantStatus    orderflow.Status
		wantChanged   bool
		expectedError error
	}{
		{
			name:    "writes the new status",
			current: "pending",
			target:  orderflow.StatusConfirmed,
			prepareMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders SET status = $1")).
					WithArgs("confirmed", "o1").
					WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
				mock.ExpectCommit()
				mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(itemRowColumns).AddRow("i1", "o1", "p1", "Burger", 2, 800.0))
			},
			wantStatus:  orderflow.StatusConfirmed,
			wantChanged: true,
		},
		{
			name:    "same status skips the update",
			current: "ready",
			target:  orderflow.StatusReady,
			prepareMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectCommit()
				mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
					WillReturnRows(sqlmock.NewRows(itemRowColumns))
			},
			wantStatus: orderflow.StatusReady,
		},
		{
			name:    "invalid transition rolls back",
			current: "completed",
			target:  orderflow.StatusPending,
			prepareMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectRollback()
			},
			expectedError: orderflow.ErrInvalidTransition,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := setupRepo(t)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1 AND restaurant_user_id = $2 FOR UPDATE")).
				WithArgs("o1", "u1").
				WillReturnRows(sqlmock.NewRows(orderRowColumns).
					AddRow("o1", "u1", "t4", 4, testCase.current, "cash", nil, 800.0, created, created))
			testCase.prepareMocks(mock)

			order, changed, err := repo.TransitionOrder(context.Background(), "u1", "o1", apply(testCase.target))

			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testCase.wantStatus, order.Status)
				assert.Equal(t, testCase.wantChanged, changed)
				require.NotNil(t, order.TableNumber)
				assert.Equal(t, 4, *order.TableNumber)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransitionOrder_ForeignOrderIsNotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("o1", "u2").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))
	mock.ExpectRollback()

	_, _, err := repo.TransitionOrder(context.Background(), "u2", "o1",
		func(current orderflow.Status) (orderflow.Status, bool, error) {
			t.Fatal("transition must not run for a missing order")
			return current, false, nil
		})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrders_AttachesItemsInLineOrder(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $2")).
		WithArgs("u1", 50).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow("o2", "u1", nil, nil, "pending", "card", "no onions", 1200.0, now, now).
			AddRow("o1", "u1", "t4", 4, "completed", "cash", nil, 2800.0, now.Add(-time.Hour), now))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY order_id, line_no")).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow("i1", "o1", "p1", "Burger", 2, 800.0).
			AddRow("i2", "o1", nil, "Pizza", 1, 1200.0).
			AddRow("i3", "o2", "p2", "Pizza", 1, 1200.0))

	orders, err := repo.ListOrders(context.Background(), "u1", 50)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Nil(t, orders[0].TableNumber)
	require.NotNil(t, orders[0].CustomerNote)
	assert.Equal(t, "no onions", *orders[0].CustomerNote)
	require.Len(t, orders[1].Items, 2)
	assert.Equal(t, "Burger", orders[1].Items[0].ProductName)
	assert.Nil(t, orders[1].Items[1].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailableProducts(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND available AND id = ANY($2::uuid[])")).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow("p1", "Burger", 800.0))

	products, err := repo.AvailableProducts(context.Background(), "u1", []string{"p1", "p9"})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 800.0, products[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTableByToken_Unknown(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM restaurant_tables WHERE qr_code_token = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "table_number"}))

	_, err := repo.GetTableByToken(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetOrder_MalformedIDIsNotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1 AND restaurant_user_id = $2")).
		WithArgs("not-a-uuid", "u1").
		WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.GetOrder(context.Background(), "u1", "not-a-uuid")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_DatabaseErrorPassesThrough(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetOrder(context.Background(), "u1", "o1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisIdempotency(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdempotency(client, time.Hour)
	ctx := context.Background()

	_, claimed, err := store.Claim(ctx, "T1", "k1")
	require.NoError(t, err)
	assert.True(t, claimed)

	orderID, claimed, err := store.Claim(ctx, "T1", "k1")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Empty(t, orderID, "first submission still in flight")

	require.NoError(t, store.Remember(ctx, "T1", "k1", "o1"))

	orderID, claimed, err = store.Claim(ctx, "T1", "k1")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, "o1", orderID)
	assert.True(t, mr.TTL(store.Key("T1", "k1")) > 0)

	mr.FastForward(2 * time.Hour)
	_, claimed, err = store.Claim(ctx, "T1", "k1")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestRedisIdempotency_ReleaseFreesTheKey(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisIdempotency(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	ctx := context.Background()

	_, claimed, err := store.Claim(ctx, "T1", "k1")
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, store.Release(ctx, "T1", "k1"))

	_, claimed, err = store.Claim(ctx, "T1", "k1")
	require.NoError(t, err)
	assert.True(t, claimed)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestKafkaPublisher_KeysByOwner(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &KafkaPublisher{Writer: writer}
	n := 4

	err := publisher.PublishOrderEvent(context.Background(), events.OrderEvent{
		Type: events.TypeOrderCreated, OrderID: "o1", OwnerID: "u1", TableNumber: &n, Status: "pending", Total: 2800,
	})

	require.NoError(t, err)
	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "u1", string(writer.msgs[0].Key))

	evt, err := events.Decode(writer.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "o1", evt.OrderID)
	assert.Equal(t, 2800.0, evt.Total)
}

func TestKafkaPublisher_PropagatesWriteError(t *testing.T) {
	publisher := &KafkaPublisher{Writer: &fakeWriter{err: errors.New("no brokers")}}

	err := publisher.PublishOrderEvent(context.Background(), events.OrderEvent{OwnerID: "u1"})

	assert.Error(t, err)
}
