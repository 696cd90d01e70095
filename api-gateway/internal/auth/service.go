package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"qrmenu/pkg/httpx"
	"qrmenu/pkg/plan"
)

type Service struct {
	users       UserStore
	denylist    Denylist
	tokens      *TokenIssuer
	autoConfirm bool
	hashCost    int
}

func NewService(users UserStore, denylist Denylist, tokens *TokenIssuer, autoConfirm bool) *Service {
	return &Service{
		users:       users,
		denylist:    denylist,
		tokens:      tokens,
		autoConfirm: autoConfirm,
		hashCost:    bcrypt.DefaultCost,
	}
}

func validate(v interface{}) error {
	if err := httpx.Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, httpx.ValidationMessage(err))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	if err := validate(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:          in.Email,
		PasswordHash:   string(hash),
		RestaurantName: in.RestaurantName,
	}
	result := &SignUpResult{Status: StatusConfirmed}
	if s.autoConfirm {
		now := time.Now()
		user.ConfirmedAt = &now
	} else {
		token := uuid.NewString()
		user.ConfirmationToken = &token
		result.Status = StatusPendingConfirmation
		result.ConfirmationToken = token
	}

	if err := s.users.CreateUser(ctx, user, plan.Parse(in.SubscriptionPlan)); err != nil {
		return nil, err
	}
	result.UserID = user.ID

	zap.L().Info("owner signed up", zap.String("user_id", user.ID), zap.String("status", result.Status))
	return result, nil
}

func (s *Service) Confirm(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	userID, err := s.users.ConfirmUser(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	zap.L().Info("owner confirmed", zap.String("user_id", userID))
	return nil
}

func (s *Service) SignIn(ctx context.Context, in SignInInput) (*TokenResponse, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.ConfirmedAt == nil {
		return nil, ErrNotConfirmed
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *Service) SignOut(ctx context.Context, raw string) error {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return err
	}
	return s.denylist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

// Authenticate returns the owner id of a valid, unrevoked token. A denylist
// that cannot be read rejects the token.
func (s *Service) Authenticate(ctx context.Context, raw string) (string, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return "", err
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return "", ErrTokenRevoked
	}
	return claims.Subject, nil
}
