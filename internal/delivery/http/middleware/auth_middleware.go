// Package middleware provides Echo middleware for the HTTP delivery.
package middleware

import (
	"strings"

	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextKeyUsername is where Authenticate stores the verified identity
// for downstream handlers.
const ContextKeyUsername = "username"

// AuthMiddleware guards routes behind access token verification.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the Bearer access token on the request.
// An absent or malformed Authorization header is an authentication gap
// (401); a present token that fails verification is a rejection (403).
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrTokenMissing.WrapMessage("authorization header absent")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return domainerrors.ErrTokenMissing.WrapMessage("authorization header is not a bearer token")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return domainerrors.ErrTokenInvalid.WrapMessage("access token failed verification")
		}

		c.Set(ContextKeyUsername, claims.Username)

		return next(c)
	}
}
