package table

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/fsp"
)

var columns = []Column{
	{Field: "id", Label: "ID", Sortable: true},
	{Field: "text", Label: "Text", Sortable: true},
	{Field: "author.name", Label: "Author", Sortable: true},
	{Field: "actions", Label: ""},
}

var opts = Options{
	Columns:     columns,
	Fields:      []string{"is_completed"},
	DefaultSort: fsp.Sort{By: "id", Order: fsp.OrderAsc},
}

func rows() []fsp.Map {
	return []fsp.Map{
		{"id": 1, "text": "Buy milk", "is_completed": false, "author": fsp.Map{"name": "Ann"}},
		{"id": 2, "text": "Walk dog", "is_completed": true, "author": fsp.Map{"name": "Bob"}},
		{"id": 3, "text": "Write report", "is_completed": false, "author": fsp.Map{"name": "Cid"}},
		{"id": 4, "text": "Call mom", "is_completed": false, "author": fsp.Map{"name": "Dee"}},
		{"id": 5, "text": "Fix bike", "is_completed": true, "author": fsp.Map{"name": "Ann"}},
		{"id": 6, "text": "Read book", "is_completed": false, "author": fsp.Map{"name": "Bob"}},
		{"id": 7, "text": "Pay bills", "is_completed": false},
	}
}

func ids(rows []fsp.Map) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["id"])
	}
	return out
}

func TestUse_Pagination(t *testing.T) {
	t.Parallel()

	view, err := Use(rows(), State{Page: 2, Size: 3}, opts)
	require.NoError(t, err)

	assert.Equal(t, []any{7}, ids(view.Rows))
	assert.Equal(t, 7, view.TotalRows)
	assert.Equal(t, PaginationProps{
		Page:        2,
		Size:        3,
		TotalRows:   7,
		PageCount:   3,
		HasPrevious: true,
		HasNext:     false,
		SizeOptions: DefaultSizeOptions,
	}, view.Pagination)

	view, err = Use(rows(), State{Page: 3, Size: 3}, opts)
	require.NoError(t, err)
	assert.Empty(t, view.Rows)
	assert.Equal(t, 7, view.TotalRows)
}

func TestUse_LargestPageSize(t *testing.T) {
	t.Parallel()

	view, err := Use(rows(), State{Page: 0, Size: math.MaxInt}, opts)
	require.NoError(t, err)
	assert.Len(t, view.Rows, 7)
	assert.Equal(t, 1, view.Pagination.PageCount)
	assert.False(t, view.Pagination.HasNext)

	view, err = Use(rows(), State{Page: 1, Size: math.MaxInt}, opts)
	require.NoError(t, err)
	assert.Empty(t, view.Rows)
	assert.Equal(t, 7, view.TotalRows)
	assert.Equal(t, 1, view.Pagination.PageCount)
	assert.True(t, view.Pagination.HasPrevious)
	assert.False(t, view.Pagination.HasNext)

	intView := NewView(&fsp.Result[int]{Rows: []int{}, TotalRows: 3}, State{Page: math.MaxInt, Size: 1}, Options{})
	assert.Equal(t, 3, intView.Pagination.PageCount)
	assert.False(t, intView.Pagination.HasNext)
}

func TestUse_Unpaginated(t *testing.T) {
	t.Parallel()

	view, err := Use(rows(), State{}, opts)
	require.NoError(t, err)

	assert.Len(t, view.Rows, 7)
	assert.Equal(t, 1, view.Pagination.PageCount)
	assert.False(t, view.Pagination.HasPrevious)
	assert.False(t, view.Pagination.HasNext)
}

func TestUse_HeaderCells(t *testing.T) {
	t.Parallel()

	view, err := Use(rows(), State{SortBy: "text", SortOrder: fsp.OrderAsc}, opts)
	require.NoError(t, err)

	assert.Equal(t, []HeaderCellProps{
		{Field: "id", Label: "ID", Sortable: true, NextSortOrder: fsp.OrderAsc},
		{Field: "text", Label: "Text", Sortable: true, Active: true, SortOrder: fsp.OrderAsc, NextSortOrder: fsp.OrderDesc},
		{Field: "author.name", Label: "Author", Sortable: true, NextSortOrder: fsp.OrderAsc},
		{Field: "actions", Label: ""},
	}, view.HeaderCells)

	view, err = Use(rows(), State{SortBy: "text", SortOrder: fsp.OrderDesc}, opts)
	require.NoError(t, err)
	assert.Equal(t, fsp.OrderAsc, view.HeaderCells[1].NextSortOrder)
	assert.Equal(t, fsp.OrderDesc, view.HeaderCells[1].SortOrder)
}

func TestUse_InvalidState(t *testing.T) {
	t.Parallel()

	_, err := Use(rows(), State{SortBy: "password_hash", SortOrder: fsp.OrderAsc}, opts)
	require.Error(t, err)

	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields, "sortBy")
}

func TestUse_MatchesPipeline(t *testing.T) {
	t.Parallel()

	state := State{
		Page:      0,
		Size:      2,
		SortBy:    "author.name",
		SortOrder: fsp.OrderDesc,
		Filters: []fsp.Filter{
			{FilterBy: "is_completed", FilterType: fsp.FilterSelect, Values: []any{false}},
		},
	}

	view, err := Use(rows(), state, opts)
	require.NoError(t, err)

	// The same request as it would arrive over HTTP.
	req, err := fsp.DecodeValues(state.Query(), []string{"id", "text", "author.name", "actions", "is_completed"})
	require.NoError(t, err)
	res, err := fsp.Run[fsp.Map](context.Background(), fsp.NewMemorySource(rows()), req, fsp.Options{DefaultSort: opts.DefaultSort})
	require.NoError(t, err)

	assert.Equal(t, res.Rows, view.Rows)
	assert.Equal(t, res.TotalRows, view.TotalRows)
	assert.Equal(t, []any{4, 3}, ids(view.Rows))
	assert.Equal(t, 5, view.TotalRows)
}

func TestState_Query(t *testing.T) {
	t.Parallel()

	state := State{Page: 1, Size: 10, SortBy: "text", SortOrder: fsp.OrderDesc}
	q := state.Query()
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "10", q.Get("size"))
	assert.Equal(t, "text", q.Get("sortBy"))
	assert.Equal(t, "desc", q.Get("sortOrder"))
	assert.False(t, q.Has("filters"))

	assert.Empty(t, State{}.Query())
}

func TestState_With(t *testing.T) {
	t.Parallel()

	state := State{Page: 3, Size: 10}

	assert.Equal(t, State{Page: 0, Size: 10, SortBy: "id", SortOrder: fsp.OrderDesc}, state.WithSort("id", fsp.OrderDesc))
	assert.Equal(t, State{Page: 4, Size: 10}, state.WithPage(4))
	assert.Equal(t, State{Page: 0, Size: 25}, state.WithSize(25))
	assert.Equal(t, State{Page: 3, Size: 10}, state)
}

func TestNewView_Empty(t *testing.T) {
	t.Parallel()

	view := NewView(&fsp.Result[int]{Rows: []int{}}, State{Size: 10}, Options{SizeOptions: []int{10, 20}})
	assert.Equal(t, 0, view.Pagination.PageCount)
	assert.False(t, view.Pagination.HasNext)
	assert.Equal(t, []int{10, 20}, view.Pagination.SizeOptions)
	assert.Empty(t, view.HeaderCells)
}
