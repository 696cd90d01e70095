package storage

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu/menu-svc/internal/domain"
)

func setupRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGenerateTables_NumbersAfterMax(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(table_number), 0)")).
		WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO restaurant_tables (user_id, table_number, qr_code_token) VALUES ($1, $2, $3), ($1, $4, $5)")).
		WithArgs("u1", 6, "tok-1", 7, "tok-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "table_number", "qr_code_token", "created_at"}).
			AddRow("t7", "u1", 7, "tok-2", now).
			AddRow("t6", "u1", 6, "tok-1", now))
	mock.ExpectCommit()

	i := 0
	tables, err := repo.GenerateTables(context.Background(), "u1", 2, func() string {
		i++
		return "tok-" + string(rune('0'+i))
	})

	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 6, tables[0].Number)
	assert.Equal(t, 7, tables[1].Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateTables_UniqueViolationIsConflict(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("COALESCE").WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO restaurant_tables").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "restaurant_tables_user_id_table_number_key"})
	mock.ExpectRollback()

	_, err := repo.GenerateTables(context.Background(), "u1", 1, func() string { return "tok" })

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTable_DetachesOrders(t *testing.T) {
	tests := []struct {
		name    string
		found   bool
		wantErr error
	}{
		{name: "deleted", found: true},
		{name: "not owned", found: false, wantErr: domain.ErrNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := setupRepo(t)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET table_id = NULL")).
				WithArgs("t1", "u1").WillReturnResult(sqlmock.NewResult(0, 3))
			q := mock.ExpectQuery("DELETE FROM restaurant_tables").WithArgs("t1", "u1")
			if testCase.found {
				q.WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "table_number", "qr_code_token", "created_at"}).
					AddRow("t1", "u1", 3, "tok", time.Now()))
				mock.ExpectCommit()
			} else {
				q.WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			}

			table, err := repo.DeleteTable(context.Background(), "u1", "t1")

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "tok", table.QRToken)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteCategory_UncategorizesProducts(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET category_id = NULL")).
		WithArgs("c1", "u1").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories")).
		WithArgs("c1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCategory(context.Background(), "u1", "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_AvailableOnly(t *testing.T) {
	repo, mock := setupRepo(t)
	cols := []string{"id", "user_id", "category_id", "name", "description", "price", "available", "image_url", "sort_order", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE user_id = $1 AND available ORDER BY sort_order")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "u1", nil, "Burger", nil, 800.0, true, nil, 0, time.Now()))

	products, err := repo.ListProducts(context.Background(), "u1", true)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Nil(t, products[0].CategoryID)
	assert.Equal(t, 800.0, products[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery("FROM products WHERE id").WithArgs("p9", "u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProduct(context.Background(), "u1", "p9")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisCache_MenuRoundTripAndInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.GetMenu(ctx, "T1")
	require.NoError(t, err)
	assert.False(t, ok)

	menu := &domain.PublicMenu{Table: domain.PublicTable{ID: "t4", Number: 4}}
	require.NoError(t, cache.SetMenu(ctx, "u1", "T1", menu))
	require.NoError(t, cache.SetMenu(ctx, "u1", "T2", menu))

	got, ok, err := cache.GetMenu(ctx, "T1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, got.Table.Number)
	assert.Equal(t, time.Minute, mr.TTL(cache.MenuKey("T1")))

	require.NoError(t, cache.InvalidateToken(ctx, "u1", "T1"))
	assert.False(t, mr.Exists(cache.MenuKey("T1")))
	assert.True(t, mr.Exists(cache.MenuKey("T2")))

	require.NoError(t, cache.InvalidateOwner(ctx, "u1"))
	assert.False(t, mr.Exists(cache.MenuKey("T2")))
	assert.False(t, mr.Exists(cache.OwnerKey("u1")))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Upload(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		wantURL   string
	}{
		{name: "aws url", wantURL: "https://menus.s3.amazonaws.com/u1/logo/a.png"},
		{name: "custom endpoint", publicURL: "http://localhost:9000/", wantURL: "http://localhost:9000/menus/u1/logo/a.png"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			putter := &fakePutter{}
			store := &S3Store{Client: putter, Bucket: "menus", PublicURL: testCase.publicURL}

			url, err := store.Upload(context.Background(), "u1/logo/a.png", "image/png", bytes.NewBufferString("png"))

			require.NoError(t, err)
			assert.Equal(t, testCase.wantURL, url)
			assert.Equal(t, "image/png", *putter.input.ContentType)
			assert.Equal(t, []byte("png"), putter.body)
		})
	}
}
