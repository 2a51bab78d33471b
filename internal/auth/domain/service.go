package domain

import (
	"context"
	"errors"
	"time"
)

type SignupRequest struct {
	Email       string
	Name        string
	CompanyName string
	Password    string
}

type LoginRequest struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)

	// VerifyToken validates a bearer token and resolves its user.
	VerifyToken(ctx context.Context, token string) (*User, error)
}

var (
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidName        = errors.New("invalid_name")
	ErrWeakPassword       = errors.New("weak_password")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserNotFound       = errors.New("user_not_found")
)
