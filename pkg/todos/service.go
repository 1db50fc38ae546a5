package todos

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
	"github.com/todosdemo/todos/pkg/models"
	"github.com/uptrace/bun"
)

// Fields lists the todo paths that can be filtered and sorted by.
var Fields = []string{"id", "text", "is_completed", "author_id", "author.name"}

// DefaultSort is the order of a list request without a sort.
var DefaultSort = fsp.Sort{By: "id", Order: fsp.OrderAsc}

var queryConfig = fsp.QueryConfig{
	Columns: map[string]fsp.Column{
		"id":           {Expr: "t.id", Type: fsp.ColumnNumber},
		"text":         {Expr: "t.text", Type: fsp.ColumnText},
		"is_completed": {Expr: "t.is_completed", Type: fsp.ColumnBool},
		"author_id":    {Expr: "t.author_id", Type: fsp.ColumnNumber},
		"author.name":  {Expr: "author.name", Type: fsp.ColumnText},
	},
	Relations: map[string]string{
		"author": "Author",
	},
	Tiebreaker: "t.id ASC",
}

type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db: db}
}

type ListOptions struct {
	Request *fsp.Request
	// WithAuthor attaches each todo's author. It never changes the order or
	// the count of the rows.
	WithAuthor bool
}

// List filters, sorts and paginates todos in the database.
func (svc *Service) List(ctx context.Context, opts ListOptions) (*fsp.Result[*models.Todo], error) {
	src := fsp.NewQuerySource[*models.Todo](svc.db, queryConfig)
	if opts.WithAuthor {
		if err := src.Join("author"); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	res, err := fsp.Run[*models.Todo](ctx, src, opts.Request, fsp.Options{DefaultSort: DefaultSort})
	if err != nil {
		return nil, err
	}

	// Filtering or sorting by an author path joins the author on its own.
	if !opts.WithAuthor {
		for _, todo := range res.Rows {
			todo.Author = nil
		}
	}

	return res, nil
}

// All returns every todo with its author, in id order.
func (svc *Service) All(ctx context.Context) ([]*models.Todo, error) {
	todos := []*models.Todo{}
	err := svc.db.NewSelect().
		Model(&todos).
		Relation("Author").
		OrderExpr("t.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return todos, nil
}

// Retrieve gets a todo and its author by ID.
func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Todo, error) {
	todo := &models.Todo{}
	err := svc.db.NewSelect().
		Model(todo).
		Relation("Author").
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Todo")
		}
		return nil, errors.WithStack(err)
	}
	return todo, nil
}

type CreateTodoOptions struct {
	Text   string
	Author *models.User
}

// Create stores a new todo. Todos without an author belong to no one and
// can only be changed by admins.
func (svc *Service) Create(ctx context.Context, opts CreateTodoOptions) (*models.Todo, error) {
	now := time.Now()
	todo := &models.Todo{
		CreatedAt: now,
		UpdatedAt: now,
		Text:      opts.Text,
		Author:    opts.Author,
	}
	if opts.Author != nil {
		id := opts.Author.ID
		todo.AuthorID = &id
	}

	_, err := svc.db.NewInsert().Model(todo).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return todo, nil
}

type UpdateTodoOptions struct {
	Columns []string
}

func (svc *Service) Update(ctx context.Context, todo *models.Todo, opts UpdateTodoOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	todo.UpdatedAt = time.Now()
	columns := append(slices.Clone(opts.Columns), "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(todo).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Todo")
	}
	return nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Todo)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Todo")
	}
	return nil
}

// Changes are the editable fields of a todo. Nil fields are left alone.
type Changes struct {
	Text        *string
	IsCompleted *bool
}

// Apply copies the changes onto todo and returns the columns to update.
func (ch Changes) Apply(todo *models.Todo) UpdateTodoOptions {
	opts := UpdateTodoOptions{Columns: []string{}}
	if ch.Text != nil && *ch.Text != todo.Text {
		todo.Text = *ch.Text
		opts.Columns = append(opts.Columns, "text")
	}
	if ch.IsCompleted != nil && *ch.IsCompleted != todo.IsCompleted {
		todo.IsCompleted = *ch.IsCompleted
		opts.Columns = append(opts.Columns, "is_completed")
	}
	return opts
}

// CanEdit reports whether the caller may change todo: admins may change any
// todo, users only their own.
func CanEdit(sess *auth.Session, todo *models.Todo) error {
	if sess.IsAdmin() {
		return nil
	}
	if sess.IsGuest() {
		return errcodes.Unauthorized("Authentication required")
	}
	if todo.AuthorID == nil || *todo.AuthorID != sess.User.ID {
		return errcodes.Forbidden("Editing other users' todos")
	}
	return nil
}

// CanDelete reports whether the caller may delete todos.
func CanDelete(sess *auth.Session) error {
	if sess.IsAdmin() {
		return nil
	}
	if sess.IsGuest() {
		return errcodes.Unauthorized("Authentication required")
	}
	return errcodes.Forbidden("Deleting todos")
}
