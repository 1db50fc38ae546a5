package pages

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	golog "github.com/robinjoseph08/golib/logger"
	"github.com/todosdemo/todos/pkg/auth"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
	"github.com/todosdemo/todos/pkg/models"
	"github.com/todosdemo/todos/pkg/table"
	"github.com/todosdemo/todos/pkg/todos"
)

var columns = []table.Column{
	{Field: "id", Label: "#", Sortable: true},
	{Field: "text", Label: "Todo", Sortable: true},
	{Field: "is_completed", Label: "Done", Sortable: true},
	{Field: "author.name", Label: "Author", Sortable: true},
}

type handler struct {
	todoService     *todos.Service
	defaultPageSize int
}

func (h *handler) tableOptions() table.Options {
	return table.Options{
		Columns:     columns,
		Fields:      []string{"author_id"},
		DefaultSort: todos.DefaultSort,
	}
}

// index renders a page of todos queried from the database.
func (h *handler) index(c echo.Context) error {
	return h.render(c, "/", func(ctx context.Context, state table.State) (*table.View[*models.Todo], error) {
		res, err := h.todoService.List(ctx, todos.ListOptions{
			Request:    state.Request(),
			WithAuthor: true,
		})
		if err != nil {
			return nil, err
		}
		return table.NewView(res, state, h.tableOptions()), nil
	})
}

// local renders the same page by loading every todo and paginating them in
// memory.
func (h *handler) local(c echo.Context) error {
	return h.render(c, "/local", func(ctx context.Context, state table.State) (*table.View[*models.Todo], error) {
		all, err := h.todoService.All(ctx)
		if err != nil {
			return nil, err
		}
		return table.Use(all, state, h.tableOptions())
	})
}

type loader func(ctx context.Context, state table.State) (*table.View[*models.Todo], error)

func (h *handler) render(c echo.Context, path string, load loader) error {
	ctx := c.Request().Context()
	status := http.StatusOK

	state, invalid := h.state(c.QueryParams())
	if len(invalid) > 0 {
		logger.FromEchoContext(c).Debug("rendering todos with invalid parameters", golog.Data{"errors": invalid})
		status = http.StatusBadRequest
	}

	view, err := load(ctx, state)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Render(status, "base", newPageData(path, auth.FromEcho(c), state, view, invalid))
}

// state decodes the list parameters. Invalid parameters are reported and
// the state falls back to the first unfiltered page.
func (h *handler) state(values url.Values) (table.State, []string) {
	req, err := fsp.DecodeValues(values, h.tableOptions().Allowed())
	if err != nil {
		var codeErr *errcodes.Error
		if !errors.As(err, &codeErr) {
			return h.defaultState(), []string{err.Error()}
		}
		return h.defaultState(), fieldMessages(codeErr.Fields)
	}

	state := table.StateFromRequest(req)
	if state.Size == 0 {
		state.Size = h.defaultPageSize
	}
	return state, nil
}

func (h *handler) defaultState() table.State {
	return table.State{Size: h.defaultPageSize}
}

func fieldMessages(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return msgs
}

type headerCell struct {
	table.HeaderCellProps
	Href string
}

type sizeLink struct {
	Size   int
	Href   string
	Active bool
}

type pageData struct {
	Session          *auth.Session
	Errors           []string
	Filters          []string
	ClearFiltersHref string
	Rows             []*models.Todo
	HeaderCells      []headerCell
	Pagination       table.PaginationProps
	PreviousHref     string
	NextHref         string
	SizeLinks        []sizeLink
}

func newPageData(path string, sess *auth.Session, state table.State, view *table.View[*models.Todo], invalid []string) pageData {
	href := func(s table.State) string {
		q := s.Query()
		if len(q) == 0 {
			return path
		}
		return path + "?" + q.Encode()
	}

	data := pageData{
		Session:    sess,
		Errors:     invalid,
		Rows:       view.Rows,
		Pagination: view.Pagination,
	}

	for _, f := range state.Filters {
		data.Filters = append(data.Filters, describeFilter(f))
	}
	if len(state.Filters) > 0 {
		cleared := state
		cleared.Filters = nil
		data.ClearFiltersHref = href(cleared.WithPage(0))
	}

	for _, cell := range view.HeaderCells {
		hc := headerCell{HeaderCellProps: cell}
		if cell.Sortable {
			hc.Href = href(state.WithSort(cell.Field, cell.NextSortOrder))
		}
		data.HeaderCells = append(data.HeaderCells, hc)
	}

	if view.Pagination.HasPrevious {
		data.PreviousHref = href(state.WithPage(state.Page - 1))
	}
	if view.Pagination.HasNext {
		data.NextHref = href(state.WithPage(state.Page + 1))
	}

	for _, size := range view.Pagination.SizeOptions {
		data.SizeLinks = append(data.SizeLinks, sizeLink{
			Size:   size,
			Href:   href(state.WithSize(size)),
			Active: size == state.Size,
		})
	}

	return data
}

func describeFilter(f fsp.Filter) string {
	switch f.FilterType {
	case fsp.FilterSearch:
		return fmt.Sprintf("%s contains %q", f.FilterBy, f.Search)
	case fsp.FilterSelect:
		values := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			values = append(values, fmt.Sprint(v))
		}
		return fmt.Sprintf("%s is one of %s", f.FilterBy, strings.Join(values, ", "))
	}
	return f.FilterBy
}
