// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"authgate/internal/delivery/http/middleware"
	"authgate/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Authentication flows
	e.POST("/register", r.authHandler.Register)
	e.POST("/login", r.authHandler.Login)
	e.POST("/token", r.authHandler.Refresh)
	e.POST("/logout", r.authHandler.Logout)

	// Routes gated behind access token verification
	e.GET("/protected", r.authHandler.Protected, r.authMiddleware.Authenticate)
}
