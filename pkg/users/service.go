package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
	"github.com/todosdemo/todos/pkg/models"
	"github.com/uptrace/bun"
)

// Fields lists the user paths that can be filtered and sorted by.
var Fields = []string{"id", "name", "email", "role"}

var queryConfig = fsp.QueryConfig{
	Columns: map[string]fsp.Column{
		"id":    {Expr: "u.id", Type: fsp.ColumnNumber},
		"name":  {Expr: "u.name", Type: fsp.ColumnText},
		"email": {Expr: "u.email", Type: fsp.ColumnText},
		"role":  {Expr: "u.role", Type: fsp.ColumnText},
	},
	Tiebreaker: "u.id ASC",
}

var defaultSort = fsp.Sort{By: "id", Order: fsp.OrderAsc}

// Service handles user operations.
type Service struct {
	db bun.IDB
}

// NewService creates a new users service.
func NewService(db bun.IDB) *Service {
	return &Service{db: db}
}

// CreateUserOptions contains options for creating a user.
type CreateUserOptions struct {
	Name     string
	Email    string
	Password string
}

// Create signs up a new user. The first user becomes an admin and everyone
// after that a regular user.
func (s *Service) Create(ctx context.Context, opts CreateUserOptions) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         opts.Name,
		Email:        models.NormalizeEmail(opts.Email),
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.User)(nil)).
			Where("email = ?", user.Email).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.ValidationFields(map[string]string{
				"email": fmt.Sprintf("%q is already taken", "email"),
			})
		}

		count, err := tx.NewSelect().Model((*models.User)(nil)).Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if count == 0 {
			user.Role = models.RoleAdmin
		}

		_, err = tx.NewInsert().Model(user).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Retrieve gets a user by ID.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// List filters, sorts and paginates users.
func (s *Service) List(ctx context.Context, req *fsp.Request) (*fsp.Result[*models.User], error) {
	src := fsp.NewQuerySource[*models.User](s.db, queryConfig)
	return fsp.Run[*models.User](ctx, src, req, fsp.Options{DefaultSort: defaultSort})
}

// CountUsers returns the total number of users.
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return count, nil
}
