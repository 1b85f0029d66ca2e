package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload embedded in a signed token.
type Claims struct {
	Username string `json:"username"`
	Type     string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying JWTs.
// Issuing is a pure function of claim + secret + current time; persisting
// the refresh token is the caller's responsibility.
type TokenService interface {
	// GenerateTokenPair creates a short-lived access token and a long-lived
	// refresh token for the given username, each signed with its own secret.
	GenerateTokenPair(username string) (accessToken string, refreshToken string, err error)

	// GenerateAccessToken creates a new access token only; used by the
	// refresh exchange.
	GenerateAccessToken(username string) (string, error)

	// ValidateAccessToken checks signature, expiry and token type against the
	// access secret and returns the embedded claims. Any failure (bad
	// signature, expired, malformed, wrong type) is a uniform error.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken is the same check against the refresh secret.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// RefreshTokenTTL returns the configured lifetime of refresh tokens.
	RefreshTokenTTL() time.Duration
}
