// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import "context"

// --- Input DTOs ---

// RegisterInput defines the data required to register a new credential.
// ID is optional; a fresh UUID is generated when it is omitted.
type RegisterInput struct {
	ID       string `json:"id"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

// RefreshInput carries the refresh token presented for exchange.
type RefreshInput struct {
	Token string `json:"token"`
}

// LogoutInput carries the refresh token being revoked.
type LogoutInput struct {
	Token string `json:"token"`
}

// --- Output DTOs ---

// LoginOutput returns the generated token pair after a successful login.
type LoginOutput struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshOutput returns the new access token after a successful exchange.
// The refresh token is not rotated.
type RefreshOutput struct {
	AccessToken string `json:"accessToken"`
}

// AuthUsecase defines the interface for authentication flows.
// This is the contract that the delivery layer (HTTP handlers) depends on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) error
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)
	Logout(ctx context.Context, input *LogoutInput) error
}
