package users

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
	"github.com/todosdemo/todos/pkg/migrations"
	"github.com/todosdemo/todos/pkg/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestServiceCreate_FirstUserIsAdmin(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateUserOptions{Name: "Ann", Email: "Ann@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, "ann@example.com", first.Email)
	assert.NotZero(t, first.ID)
	assert.True(t, auth.CheckPassword("password123", first.PasswordHash))

	second, err := svc.Create(ctx, CreateUserOptions{Name: "Bob", Email: "bob@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, second.Role)

	count, err := svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestServiceCreate_DuplicateEmail(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserOptions{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserOptions{Name: "Other Ann", Email: "ANN@example.com", Password: "password123"})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)
	assert.Contains(t, codeErr.Fields, "email")
}

func TestServiceRetrieve_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestDB(t))

	_, err := svc.Retrieve(context.Background(), 42)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusNotFound, codeErr.HTTPCode)
}

func TestServiceList(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, name := range []string{"Cid", "Ann", "Bob", "Dee"} {
		_, err := svc.Create(ctx, CreateUserOptions{Name: name, Email: name + "@example.com", Password: "password123"})
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, &fsp.Request{
		Filters: []fsp.Filter{{FilterBy: "role", FilterType: fsp.FilterSelect, Values: []any{models.RoleUser}}},
		Sort:    &fsp.Sort{By: "name", Order: fsp.OrderAsc},
		Page:    &fsp.Page{Page: 0, Size: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRows)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Ann", res.Rows[0].Name)
	assert.Equal(t, "Bob", res.Rows[1].Name)
}
