package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/binder"
	"github.com/todosdemo/todos/pkg/config"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/gql"
	"github.com/todosdemo/todos/pkg/pages"
	"github.com/todosdemo/todos/pkg/testutils"
	"github.com/todosdemo/todos/pkg/todos"
	"github.com/todosdemo/todos/pkg/users"
	"github.com/uptrace/bun"
)

// NewEcho builds the router with every route registered.
func NewEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.BodyLimit("1M"))

	health.RegisterRoutes(e)

	authService := auth.NewService(db, cfg.SessionSecret, cfg.SessionMaxAge)
	authMiddleware := auth.NewMiddleware(authService)

	// Every other route sees the caller's session, guests included.
	api := e.Group("/api", authMiddleware.Load)
	auth.RegisterRoutes(api, authService)
	users.RegisterRoutes(api, db, authService, authMiddleware)
	todoService := todos.RegisterRoutes(api, db)
	if err := gql.RegisterRoutes(api, todoService); err != nil {
		return nil, err
	}

	if err := pages.RegisterRoutes(e, todoService, cfg.DefaultPageSize, authMiddleware.Load); err != nil {
		return nil, err
	}

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := NewEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
