package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all auth routes under /api/auth.
func RegisterRoutes(api *echo.Group, authService *Service) {
	h := &handler{
		authService: authService,
	}

	g := api.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/session", h.session)
}
