package pages

import (
	"github.com/labstack/echo/v4"
	"github.com/todosdemo/todos/pkg/todos"
)

// RegisterRoutes installs the page renderer and serves the todo pages. The
// middleware must load the caller's session.
func RegisterRoutes(e *echo.Echo, todoService *todos.Service, defaultPageSize int, m ...echo.MiddlewareFunc) error {
	renderer, err := NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer

	h := &handler{
		todoService:     todoService,
		defaultPageSize: defaultPageSize,
	}

	e.GET("/", h.index, m...)
	e.GET("/local", h.local, m...)

	return nil
}
