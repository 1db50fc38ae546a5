package todos

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	golog "github.com/robinjoseph08/golib/logger"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
)

type handler struct {
	todoService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	c.Set("ignore_unknown_params", true)
	params := ListTodosQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	req, err := fsp.Decode(params.Params(), Fields)
	if err != nil {
		return err
	}

	result, err := h.todoService.List(ctx, ListOptions{
		Request:    req,
		WithAuthor: params.WithAuthor,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Todo")
	}

	todo, err := h.todoService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todo)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateTodoPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	todo, err := h.todoService.Create(ctx, CreateTodoOptions{
		Text:   params.Text,
		Author: auth.FromEcho(c).User,
	})
	if err != nil {
		return err
	}

	logger.FromEchoContext(c).Info("todo created", golog.Data{"todo_id": todo.ID})

	return c.JSON(http.StatusCreated, todo)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Todo")
	}

	params := UpdateTodoPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	todo, err := h.todoService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	if err := CanEdit(auth.FromEcho(c), todo); err != nil {
		return err
	}

	changes := Changes{Text: params.Text, IsCompleted: params.IsCompleted}
	if err := h.todoService.Update(ctx, todo, changes.Apply(todo)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, todo)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Todo")
	}

	if err := CanDelete(auth.FromEcho(c)); err != nil {
		return err
	}

	if err := h.todoService.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
