// Package testutils provides test-only API endpoints for seeding and
// resetting data from browser tests. The routes are only registered when the
// environment is "test".
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db bun.IDB) {
	h := &handler{db: db}

	test := e.Group("/test")
	test.POST("/users", h.createUser)
	test.POST("/todos", h.createTodos)
	test.DELETE("/data", h.deleteAll)
}
