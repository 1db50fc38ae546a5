package testutils

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todosdemo/todos/pkg/binder"
	"github.com/todosdemo/todos/pkg/migrations"
	"github.com/todosdemo/todos/pkg/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setup(t *testing.T) (*echo.Echo, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	RegisterRoutes(e, db)

	return e, db
}

func send(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestSeedAndReset(t *testing.T) {
	t.Parallel()

	e, db := setup(t)
	ctx := context.Background()

	rr := send(e, http.MethodPost, "/test/users", `{"name":"Ann","email":"ANN@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"user"`)
	assert.Contains(t, rr.Body.String(), `"email":"ann@example.com"`)

	rr = send(e, http.MethodPost, "/test/todos", `{"todos":[{"text":"a","author_id":1},{"text":"b","is_completed":true}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"created":2}`, rr.Body.String())

	var todos []*models.Todo
	require.NoError(t, db.NewSelect().Model(&todos).Order("t.id").Scan(ctx))
	require.Len(t, todos, 2)
	assert.Equal(t, 1, *todos[0].AuthorID)
	assert.True(t, todos[1].IsCompleted)

	rr = send(e, http.MethodDelete, "/test/data", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"todos":2,"users":1}`, rr.Body.String())
}
