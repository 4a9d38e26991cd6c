package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/handler"
	"github.com/iliyamo/ticketing-core/internal/middleware"
)

// RegisterAuth mounts the registration/login/refresh/logout/me endpoints
// under /auth. Only /auth/me requires a bearer token.
func RegisterAuth(e *echo.Echo, h *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)

	authed := g.Group("", middleware.JWTAuth(jwtSecret))
	authed.GET("/me", h.Me)
	authed.PUT("/me", h.Me)
}
