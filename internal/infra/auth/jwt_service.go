// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authgate/config"
	"authgate/internal/domain/service"
)

// ErrInvalidToken is the uniform verification failure. Bad signature,
// expired, malformed and wrong token type all collapse into it; callers get
// no partial trust and no hint which check failed.
var ErrInvalidToken = errors.New("invalid token")

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	accessSecret  string        // Secret key for signing access tokens.
	refreshSecret string        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
}

// NewJWTService is the constructor for jwtService.
// The two secrets are independent so that compromising one token class
// never allows forging the other.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     time.Minute * 15,
		refreshTTL:    time.Hour * 24 * 7,
	}, nil
}

// GenerateTokenPair creates a new access token and refresh token for a given username.
func (s *jwtService) GenerateTokenPair(username string) (accessToken string, refreshToken string, err error) {
	accessToken, err = s.generateToken(username, s.accessTTL, s.accessSecret, accessTokenType)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.generateToken(username, s.refreshTTL, s.refreshSecret, refreshTokenType)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken creates a new access token only, used by the refresh exchange.
func (s *jwtService) GenerateAccessToken(username string) (string, error) {
	return s.generateToken(username, s.accessTTL, s.accessSecret, accessTokenType)
}

// ValidateAccessToken checks an access token against the access secret.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, s.accessSecret, accessTokenType)
}

// ValidateRefreshToken checks a refresh token against the refresh secret.
func (s *jwtService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, s.refreshSecret, refreshTokenType)
}

// RefreshTokenTTL returns the configured duration for refresh tokens.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

// generateToken is a private helper to create a JWT with specific claims.
func (s *jwtService) generateToken(username string, ttl time.Duration, secret, tokenType string) (string, error) {
	now := time.Now()
	claims := &service.Claims{
		Username: username,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// validate parses and verifies a token, then checks its declared type.
// Expiry is enforced by the jwt library against the embedded exp claim.
func (s *jwtService) validate(tokenString, secret, wantType string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != wantType || claims.Username == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
