package auth

import (
	"errors"
	"time"
)

const (
	StatusPendingConfirmation = "pending_confirmation"
	StatusConfirmed           = "confirmed"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfirmed       = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token revoked")
)

type User struct {
	ID                string
	Email             string
	PasswordHash      string
	RestaurantName    string
	ConfirmationToken *string
	ConfirmedAt       *time.Time
	CreatedAt         time.Time
}

type SignUpInput struct {
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	RestaurantName   string `json:"restaurant_name" validate:"required,max=120"`
	SubscriptionPlan string `json:"subscription_plan" validate:"omitempty,oneof=basic premium"`
}

type SignUpResult struct {
	UserID            string `json:"user_id"`
	Status            string `json:"status"`
	ConfirmationToken string `json:"confirmation_token,omitempty"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ConfirmInput struct {
	Token string `json:"token" validate:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
