package testutils

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/models"
	"github.com/uptrace/bun"
)

type handler struct {
	db bun.IDB
}

// createUserRequest is the request body for creating a test user.
type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" default:"user" validate:"oneof=admin user"`
}

// createUser creates a user with any role, skipping the signup rules.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         req.Role,
	}

	_, err = h.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	return c.JSON(http.StatusCreated, user)
}

type testTodo struct {
	Text        string `json:"text" validate:"required"`
	IsCompleted bool   `json:"is_completed"`
	AuthorID    *int   `json:"author_id"`
}

// createTodosRequest is the request body for seeding todos.
type createTodosRequest struct {
	Todos []testTodo `json:"todos" validate:"required,min=1,dive"`
}

type createTodosResponse struct {
	Created int `json:"created"`
}

// createTodos inserts todos in order, so ids follow the request.
// POST /test/todos.
func (h *handler) createTodos(c echo.Context) error {
	ctx := c.Request().Context()

	var req createTodosRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	rows := make([]*models.Todo, 0, len(req.Todos))
	for _, t := range req.Todos {
		rows = append(rows, &models.Todo{
			CreatedAt:   now,
			UpdatedAt:   now,
			Text:        t.Text,
			IsCompleted: t.IsCompleted,
			AuthorID:    t.AuthorID,
		})
	}

	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, row := range rows {
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return errors.Wrap(err, "failed to create todo")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createTodosResponse{Created: len(rows)})
}

// deleteAllResponse is the response body for deleting all data.
type deleteAllResponse struct {
	Todos int `json:"todos"`
	Users int `json:"users"`
}

// deleteAll deletes every todo and user.
// DELETE /test/data.
func (h *handler) deleteAll(c echo.Context) error {
	ctx := c.Request().Context()

	// Todos first, they reference users.
	todos, err := h.db.NewDelete().
		Model((*models.Todo)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete todos")
	}

	users, err := h.db.NewDelete().
		Model((*models.User)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete users")
	}

	deletedTodos, _ := todos.RowsAffected()
	deletedUsers, _ := users.RowsAffected()

	return c.JSON(http.StatusOK, deleteAllResponse{
		Todos: int(deletedTodos),
		Users: int(deletedUsers),
	})
}
