package gql

import (
	"github.com/labstack/echo/v4"
	"github.com/todosdemo/todos/pkg/todos"
)

// RegisterRoutes serves the schema at /api/graphql.
func RegisterRoutes(api *echo.Group, todoService *todos.Service) error {
	schema, err := NewSchema(todoService)
	if err != nil {
		return err
	}

	h := &handler{schema: schema}
	api.POST("/graphql", h.query)

	return nil
}
