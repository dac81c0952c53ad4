package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookdamapp/bookdam-server/internal/auth"
	"github.com/bookdamapp/bookdam-server/internal/domain"
	domainerrors "github.com/bookdamapp/bookdam-server/internal/errors"
	"github.com/bookdamapp/bookdam-server/internal/id"
	"github.com/bookdamapp/bookdam-server/internal/store"
	"github.com/bookdamapp/bookdam-server/internal/validation"
)

// AuthService handles accounts: registration, login, profile updates,
// and withdrawal with bookshelf cascade.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewAuthService creates an auth service.
func NewAuthService(st *store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		logger:    logger,
		validator: validation.New(),
	}
}

// RegisterRequest contains fields for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Nickname string `json:"nickname" validate:"required,min=1,max=30"`
}

// Register creates an account and returns the user with a fresh access
// token. Email uniqueness is enforced by the store's email index.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", domainerrors.Validation(err.Error())
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, "", fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		Nickname:     req.Nickname,
		Provider:     "password",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users.Create(ctx, userID, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, "", domainerrors.AlreadyExists("an account with this email already exists")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID)
	return user, token, nil
}

// LoginRequest contains credentials for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns the user with a fresh access
// token. An unknown email and a wrong password are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, "", err
	}

	user, err := s.store.Users.GetByIndex(ctx, "email", req.Email)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, "", domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, "", fmt.Errorf("look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, "", domainerrors.InvalidCredentials("invalid email or password")
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Me returns the user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateNicknameRequest contains fields for renaming a profile.
type UpdateNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,min=1,max=30"`
}

// UpdateNickname changes the user's display name.
func (s *AuthService) UpdateNickname(ctx context.Context, userID string, req UpdateNicknameRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Nickname = req.Nickname
	user.UpdatedAt = time.Now()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("nickname updated", "user_id", userID)
	return user, nil
}

// ChangePasswordRequest contains fields for rotating a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangePassword replaces the user's password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return domainerrors.InvalidCredentials("current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return domainerrors.Validation(err.Error())
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// Withdraw deletes the account. The bookshelf cascade runs first so a
// failure there leaves the user intact and retryable.
func (s *AuthService) Withdraw(ctx context.Context, userID string) error {
	if _, err := s.Me(ctx, userID); err != nil {
		return err
	}

	removed, err := s.store.DeleteBookshelfForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete bookshelf for user: %w", err)
	}

	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user withdrawn",
		"user_id", userID,
		"bookshelf_entries_removed", removed,
	)
	return nil
}

// VerifyAccessToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}
