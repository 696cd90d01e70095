package auth

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu/pkg/plan"
)

func TestPostgresStore_CreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStore(db)

	created := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("chef@example.com", "hash", "Cafe", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u1", created))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("u1", "Cafe", "premium").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	user := &User{Email: "chef@example.com", PasswordHash: "hash", RestaurantName: "Cafe", ConfirmedAt: &now}
	require.NoError(t, store.CreateUser(context.Background(), user, plan.Premium))

	assert.Equal(t, "u1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateUser_EmailTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err = store.CreateUser(context.Background(), &User{Email: "chef@example.com"}, plan.Basic)

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ConfirmUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET confirmed_at")).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET confirmed_at")).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := store.ConfirmUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = store.ConfirmUser(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStore(db)

	columns := []string{"id", "email", "password_hash", "restaurant_name", "confirmed_at", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("chef@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("u1", "chef@example.com", "hash", "Cafe", nil, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(columns))

	user, err := store.GetUserByEmail(context.Background(), "chef@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Nil(t, user.ConfirmedAt)

	_, err = store.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	denylist := NewRedisDenylist(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, denylist.Revoke(ctx, "jti-2", -time.Second))

	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.False(t, mr.Exists(denylist.Key("jti-2")))

	mr.FastForward(2 * time.Minute)
	revoked, err = denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)

	raw, expiresAt, err := issuer.Issue("u1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), expiresAt, time.Minute)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	stale, _, err := issuer.Issue("u1")
	require.NoError(t, err)
	_, err = issuer.Parse(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
