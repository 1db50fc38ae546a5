// Package table is the in-memory mirror of the list endpoints. Given rows
// that are already loaded and the table's state, it returns the visible page
// along with the props needed to render pagination controls and sortable
// header cells.
package table

import (
	"context"
	"net/url"

	"github.com/todosdemo/todos/pkg/fsp"
)

// DefaultSizeOptions are the page sizes offered when Options doesn't set
// any.
var DefaultSizeOptions = []int{5, 10, 25, 50}

// Column is one column of the table. Field is the dotted path the column
// sorts and filters by.
type Column struct {
	Field    string
	Label    string
	Sortable bool
}

// State is the table's current page, sort and filters. A zero Size means no
// pagination and an empty SortBy means the default order.
type State struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder fsp.Order
	Filters   []fsp.Filter
}

// StateFromRequest is the inverse of State.Request.
func StateFromRequest(req *fsp.Request) State {
	s := State{}
	if req == nil {
		return s
	}
	s.Filters = req.Filters
	if req.Sort != nil {
		s.SortBy = req.Sort.By
		s.SortOrder = req.Sort.Order
	}
	if req.Page != nil {
		s.Page = req.Page.Page
		s.Size = req.Page.Size
	}
	return s
}

// Request converts the state into a pipeline request.
func (s State) Request() *fsp.Request {
	req := &fsp.Request{Filters: s.Filters}
	if s.SortBy != "" {
		req.Sort = &fsp.Sort{By: s.SortBy, Order: s.SortOrder}
	}
	if s.Size > 0 {
		req.Page = &fsp.Page{Page: s.Page, Size: s.Size}
	}
	return req
}

// Query renders the state as the query parameters the list endpoints accept.
func (s State) Query() url.Values {
	return fsp.Encode(s.Request())
}

// WithSort returns a copy of the state sorted by field, back on the first
// page.
func (s State) WithSort(field string, order fsp.Order) State {
	s.SortBy = field
	s.SortOrder = order
	s.Page = 0
	return s
}

// WithPage returns a copy of the state on page n.
func (s State) WithPage(n int) State {
	s.Page = n
	return s
}

// WithSize returns a copy of the state showing size rows per page, back on
// the first page.
func (s State) WithSize(size int) State {
	s.Size = size
	s.Page = 0
	return s
}

type Options struct {
	Columns []Column
	// Fields are paths that can be filtered or sorted by without having a
	// column of their own.
	Fields      []string
	DefaultSort fsp.Sort
	Predicates  map[string]fsp.Predicate
	SizeOptions []int
}

// PaginationProps drive the pagination controls.
type PaginationProps struct {
	Page        int   `json:"page"`
	Size        int   `json:"size"`
	TotalRows   int   `json:"totalRows"`
	PageCount   int   `json:"pageCount"`
	HasPrevious bool  `json:"hasPrevious"`
	HasNext     bool  `json:"hasNext"`
	SizeOptions []int `json:"sizeOptions"`
}

// HeaderCellProps drive one header cell. NextSortOrder is the order a click
// on the cell should request.
type HeaderCellProps struct {
	Field         string    `json:"field"`
	Label         string    `json:"label"`
	Sortable      bool      `json:"sortable"`
	Active        bool      `json:"active"`
	SortOrder     fsp.Order `json:"sortOrder,omitempty"`
	NextSortOrder fsp.Order `json:"nextSortOrder,omitempty"`
}

type View[T any] struct {
	Rows        []T               `json:"rows"`
	TotalRows   int               `json:"totalRows"`
	Pagination  PaginationProps   `json:"paginationProps"`
	HeaderCells []HeaderCellProps `json:"headerCellProps"`
}

// Use filters, sorts and paginates rows in memory. The state is validated
// exactly as the list endpoints validate their query parameters, so the same
// state yields the same rows and total here as over the network.
func Use[T fsp.Record](rows []T, state State, opts Options) (*View[T], error) {
	req, err := fsp.DecodeValues(state.Query(), opts.Allowed())
	if err != nil {
		return nil, err
	}

	src := fsp.NewMemorySource(rows)
	src.Predicates = opts.Predicates

	res, err := fsp.Run[T](context.Background(), src, req, fsp.Options{DefaultSort: opts.DefaultSort})
	if err != nil {
		return nil, err
	}

	return NewView(res, StateFromRequest(req), opts), nil
}

// NewView builds the props for a page of rows that has already been
// filtered, sorted and paginated elsewhere.
func NewView[T any](res *fsp.Result[T], state State, opts Options) *View[T] {
	sizes := opts.SizeOptions
	if len(sizes) == 0 {
		sizes = DefaultSizeOptions
	}

	pageCount := 0
	switch {
	case state.Size > 0:
		pageCount = res.TotalRows / state.Size
		if res.TotalRows%state.Size != 0 {
			pageCount++
		}
	case res.TotalRows > 0:
		pageCount = 1
	}

	cells := make([]HeaderCellProps, 0, len(opts.Columns))
	for _, col := range opts.Columns {
		cell := HeaderCellProps{Field: col.Field, Label: col.Label, Sortable: col.Sortable}
		if col.Sortable {
			cell.NextSortOrder = fsp.OrderAsc
			if state.SortBy == col.Field {
				cell.Active = true
				cell.SortOrder = state.SortOrder
				if state.SortOrder == fsp.OrderAsc {
					cell.NextSortOrder = fsp.OrderDesc
				}
			}
		}
		cells = append(cells, cell)
	}

	return &View[T]{
		Rows:      res.Rows,
		TotalRows: res.TotalRows,
		Pagination: PaginationProps{
			Page:        state.Page,
			Size:        state.Size,
			TotalRows:   res.TotalRows,
			PageCount:   pageCount,
			HasPrevious: state.Size > 0 && state.Page > 0,
			HasNext:     state.Page < pageCount-1,
			SizeOptions: sizes,
		},
		HeaderCells: cells,
	}
}

// Allowed lists every path the table accepts in its sort and filters.
func (o Options) Allowed() []string {
	out := make([]string, 0, len(o.Columns)+len(o.Fields))
	for _, c := range o.Columns {
		out = append(out, c.Field)
	}
	return append(out, o.Fields...)
}
