package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"qrmenu/pkg/plan"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *User, p plan.Plan) error
	ConfirmUser(ctx context.Context, token string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// CreateUser writes the account and its profile together, so an owner
// never exists without a plan.
func (s *PostgresStore) CreateUser(ctx context.Context, user *User, p plan.Plan) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, restaurant_name, confirmation_token, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		user.Email, user.PasswordHash, user.RestaurantName, user.ConfirmationToken, user.ConfirmedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (user_id, restaurant_name, subscription_plan) VALUES ($1, $2, $3)",
		user.ID, user.RestaurantName, string(p)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresStore) ConfirmUser(ctx context.Context, token string) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx, `
		UPDATE users SET confirmed_at = now(), confirmation_token = NULL
		WHERE confirmation_token = $1
		RETURNING id`, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	var confirmedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, restaurant_name, confirmed_at, created_at
		FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RestaurantName, &confirmedAt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		u.ConfirmedAt = &confirmedAt.Time
	}
	return &u, nil
}

type RedisDenylist struct {
	Client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{Client: client}
}

func (d *RedisDenylist) Key(tokenID string) string {
	return "auth:revoked:" + tokenID
}

// Revoke keeps the entry only as long as the token could still be used.
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.Client.Set(ctx, d.Key(tokenID), "1", ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.Client.Exists(ctx, d.Key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var (
	_ UserStore = (*PostgresStore)(nil)
	_ Denylist  = (*RedisDenylist)(nil)
)
