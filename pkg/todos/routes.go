package todos

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all todo routes under /api/todos. The caller's
// session must already be loaded.
func RegisterRoutes(api *echo.Group, db bun.IDB) *Service {
	todoService := NewService(db)

	h := &handler{
		todoService: todoService,
	}

	g := api.Group("/todos")
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	return todoService
}
