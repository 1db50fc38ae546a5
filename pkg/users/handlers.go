package users

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
)

type handler struct {
	userService *Service
	authService *auth.Service
}

// create signs a user up and logs them in.
func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Create(ctx, CreateUserOptions(params))
	if err != nil {
		return err
	}

	if err := h.authService.StartSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	sess := auth.FromEcho(c)
	if !sess.IsAdmin() && sess.User.ID != id {
		return errcodes.Forbidden("Viewing other users")
	}

	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	c.Set("ignore_unknown_params", true)
	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	req, err := fsp.Decode(params.Params(), Fields)
	if err != nil {
		return err
	}

	result, err := h.userService.List(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
