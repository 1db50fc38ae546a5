package todos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/binder"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/models"
)

type request struct {
	method  string
	target  string
	payload string
	id      int
	caller  *models.User
}

func serve(t *testing.T, fn echo.HandlerFunc, r request) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b

	var req *http.Request
	if r.payload == "" {
		req = httptest.NewRequest(r.method, r.target, nil)
	} else {
		req = httptest.NewRequest(r.method, r.target, strings.NewReader(r.payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)
	if r.id != 0 {
		c.SetPath("/api/todos/:id")
		c.SetParamNames("id")
		c.SetParamValues(strconv.Itoa(r.id))
	}
	auth.Attach(c, &auth.Session{User: r.caller})

	return rr, fn(c)
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, code, codeErr.HTTPCode)
}

type listResponse struct {
	Rows []struct {
		ID     int `json:"id"`
		Author *struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"rows"`
	TotalRows int `json:"totalRows"`
}

func TestHandlerList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := &handler{todoService: f.svc}

	q := url.Values{}
	q.Set("filters", `[{"filterBy":"is_completed","filterType":"select","filter":[true]}]`)
	q.Set("sortBy", "author.name")
	q.Set("sortOrder", "desc")
	q.Set("page", "0")
	q.Set("size", "3")
	q.Set("withAuthor", "true")
	q.Set("ref", "newsletter")

	rr, err := serve(t, h.list, request{method: http.MethodGet, target: "/api/todos?" + q.Encode()})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.TotalRows)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, 9, resp.Rows[0].ID)
	assert.Equal(t, "Zed", resp.Rows[0].Author.Name)
	assert.Equal(t, 2, resp.Rows[1].ID)
	assert.Equal(t, 5, resp.Rows[2].ID)
}

func TestHandlerList_WithoutAuthor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := &handler{todoService: f.svc}

	rr, err := serve(t, h.list, request{method: http.MethodGet, target: "/api/todos?sortBy=author.name&sortOrder=asc&page=1&size=4"})
	require.NoError(t, err)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.TotalRows)
	require.Len(t, resp.Rows, 4)
	for _, row := range resp.Rows {
		assert.Nil(t, row.Author)
	}
	assert.NotContains(t, rr.Body.String(), `"author"`)
}

func TestHandlerList_InvalidQuery(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := &handler{todoService: f.svc}

	q := url.Values{}
	q.Set("page", "-1")
	q.Set("size", "10")
	q.Set("sortBy", "created_at")
	q.Set("filters", `[{"filterBy":"text","filterType":"fuzzy","filter":"x"}]`)

	_, err := serve(t, h.list, request{method: http.MethodGet, target: "/api/todos?" + q.Encode()})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)
	assert.Equal(t, "invalid_shape", codeErr.Code)
	assert.Equal(t, `"page" must be an integer greater than or equal to 0`, codeErr.Fields["page"])
	assert.Contains(t, codeErr.Fields, "sortBy")
	assert.Contains(t, codeErr.Fields, "filters[0].filterType")
}

func TestHandlerRetrieve(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := &handler{todoService: f.svc}

	rr, err := serve(t, h.retrieve, request{method: http.MethodGet, target: "/api/todos/2", id: 2})
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), `"name":"Ann"`)

	_, err = serve(t, h.retrieve, request{method: http.MethodGet, target: "/api/todos/99", id: 99})
	requireCode(t, err, http.StatusNotFound)
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := &handler{todoService: f.svc}

	rr, err := serve(t, h.create, request{method: http.MethodPost, target: "/api/todos", payload: `{"text":"  guest todo  "}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var guestTodo models.Todo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &guestTodo))
	assert.Equal(t, "guest todo", guestTodo.Text)
	assert.Nil(t, guestTodo.AuthorID)

	rr, err = serve(t, h.create, request{method: http.MethodPost, target: "/api/todos", payload: `{"text":"mine"}`, caller: f.ann})
	require.NoError(t, err)

	var userTodo models.Todo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &userTodo))
	require.NotNil(t, userTodo.AuthorID)
	assert.Equal(t, f.ann.ID, *userTodo.AuthorID)

	_, err = serve(t, h.create, request{method: http.MethodPost, target: "/api/todos", payload: `{"text":"   "}`})
	requireCode(t, err, http.StatusBadRequest)
}

func TestHandlerUpdate_Permissions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := &handler{todoService: f.svc}

	update := func(caller *models.User, id int, payload string) (*httptest.ResponseRecorder, error) {
		return serve(t, h.update, request{
			method:  http.MethodPatch,
			target:  "/api/todos/" + strconv.Itoa(id),
			payload: payload,
			id:      id,
			caller:  caller,
		})
	}

	// Ann owns todo 2.
	rr, err := update(f.ann, 2, `{"is_completed":false}`)
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), `"is_completed":false`)

	_, err = update(f.bob, 2, `{"text":"hijacked"}`)
	requireCode(t, err, http.StatusForbidden)

	_, err = update(nil, 2, `{"text":"hijacked"}`)
	requireCode(t, err, http.StatusUnauthorized)

	// Todo 4 belongs to no one.
	_, err = update(f.ann, 4, `{"text":"mine now"}`)
	requireCode(t, err, http.StatusForbidden)

	rr, err = update(f.admin, 4, `{"text":"call mom tonight"}`)
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), `"text":"call mom tonight"`)

	_, err = update(f.admin, 99, `{"text":"nothing"}`)
	requireCode(t, err, http.StatusNotFound)

	_, err = update(f.ann, 2, `{"text":""}`)
	requireCode(t, err, http.StatusBadRequest)
}

func TestHandlerDelete_AdminOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := &handler{todoService: f.svc}

	del := func(caller *models.User, id int) (*httptest.ResponseRecorder, error) {
		return serve(t, h.delete, request{method: http.MethodDelete, target: "/api/todos/" + strconv.Itoa(id), id: id, caller: caller})
	}

	_, err := del(f.ann, 2)
	requireCode(t, err, http.StatusForbidden)

	_, err = del(nil, 2)
	requireCode(t, err, http.StatusUnauthorized)

	rr, err := del(f.admin, 2)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, err = del(f.admin, 2)
	requireCode(t, err, http.StatusNotFound)
}
