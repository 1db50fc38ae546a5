package users

import (
	"github.com/labstack/echo/v4"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes under /api/users.
func RegisterRoutes(api *echo.Group, db bun.IDB, authService *auth.Service, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
		authService: authService,
	}

	users := api.Group("/users")

	// Signing up is open to guests.
	users.POST("", h.create)

	users.GET("", h.list, authMiddleware.RequireAdmin)
	users.GET("/:id", h.retrieve, authMiddleware.RequireUser)

	return userService
}
