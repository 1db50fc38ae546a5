// Package fsp implements the filter/sort/paginate pipeline shared by every
// list surface: the REST and GraphQL todo endpoints, the server-rendered
// page, and the in-memory table view.
//
// A request is decoded once at the boundary (Decode), then run against a
// Source. Sources come in two variants: MemorySource works over a slice of
// records and QuerySource over a bun select query. Both apply the same
// semantics so that identical requests over identical data yield identical
// results.
package fsp

import (
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// FilterType selects how a filter value is matched.
type FilterType string

const (
	// FilterSearch is a case-insensitive literal substring match.
	FilterSearch FilterType = "search"
	// FilterSelect is exact membership in a set of values.
	FilterSelect FilterType = "select"
)

// Order is a sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Filter describes one field-level filter. Search is used when FilterType
// is FilterSearch and Values when it is FilterSelect. An empty Search or an
// empty Values set matches every record.
type Filter struct {
	FilterBy   string
	FilterType FilterType
	Search     string
	Values     []any
}

type wireFilter struct {
	FilterBy   string     `json:"filterBy"`
	FilterType FilterType `json:"filterType"`
	Filter     any        `json:"filter"`
}

// MarshalJSON renders the filter in its wire shape, with the search text or
// the value set under "filter".
func (f Filter) MarshalJSON() ([]byte, error) {
	w := wireFilter{FilterBy: f.FilterBy, FilterType: f.FilterType}
	if f.FilterType == FilterSelect {
		values := f.Values
		if values == nil {
			values = []any{}
		}
		w.Filter = values
	} else {
		w.Filter = f.Search
	}
	b, err := json.Marshal(w)
	return b, errors.WithStack(err)
}

// Sort orders rows by the value at a dotted field path.
type Sort struct {
	By    string
	Order Order
}

// Page is a zero-based page of Size rows.
type Page struct {
	Page int
	Size int
}

// Offset is the index of the first row of the page.
func (p Page) Offset() int {
	return p.Page * p.Size
}

// Request is a validated filter/sort/paginate request. Sort and Page are nil
// when the client didn't send them.
type Request struct {
	Filters []Filter
	Sort    *Sort
	Page    *Page
}

// Result is the response envelope. TotalRows counts every row matching the
// filters, regardless of pagination.
type Result[T any] struct {
	Rows      []T `json:"rows"`
	TotalRows int `json:"totalRows"`
}
