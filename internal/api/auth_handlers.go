package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	"github.com/bookdamapp/bookdam-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates an account and returns an access token",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Verifies credentials and returns an access token",
		Tags:        []string{"Auth"},
	}, s.handleLogin)
}

// === DTOs ===

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"Email address"`
	Password string `json:"password" validate:"required,min=8,max=128" doc:"Password (min 8 characters)"`
	Nickname string `json:"nickname" validate:"required,min=1,max=30" doc:"Display name"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" doc:"Email address"`
	Password string `json:"password" validate:"required" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// UserResponse contains public account data.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Nickname  string    `json:"nickname" doc:"Display name"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
}

// AuthResponse contains the account and a fresh access token.
type AuthResponse struct {
	User        UserResponse `json:"user" doc:"Account profile"`
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	ExpiresIn   int64        `json:"expires_in" doc:"Token lifetime in seconds"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		CreatedAt: user.CreatedAt,
	}
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	user, token, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Nickname: input.Body.Nickname,
	})
	if err != nil {
		return nil, err
	}

	return s.authOutput(user, token), nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	user, token, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return s.authOutput(user, token), nil
}

func (s *Server) authOutput(user *domain.User, token string) *AuthOutput {
	return &AuthOutput{
		Body: AuthResponse{
			User:        toUserResponse(user),
			AccessToken: token,
			ExpiresIn:   int64(s.config.Auth.AccessTokenDuration.Seconds()),
		},
	}
}
