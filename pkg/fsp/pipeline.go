package fsp

import (
	"context"

	"github.com/pkg/errors"
)

// Source is a collection the pipeline can filter, count, sort and page.
// A Source is used for a single Run.
type Source[T any] interface {
	// Filter narrows the collection. Successive filters combine with AND.
	Filter(f Filter) error
	// Count returns the number of rows matching the filters so far,
	// ignoring any paging.
	Count(ctx context.Context) (int, error)
	// Sort orders the collection. Rows with equal values keep the source's
	// default relative order.
	Sort(s Sort) error
	// Page restricts Rows to one page.
	Page(p Page)
	// Rows returns the filtered, sorted and paged rows.
	Rows(ctx context.Context) ([]T, error)
}

// Options are the per-collection settings of a Run.
type Options struct {
	// DefaultSort applies when the request has no sort.
	DefaultSort Sort
}

// Run applies req to src: filters, then the total count, then sorting and
// paging.
func Run[T any](ctx context.Context, src Source[T], req *Request, opts Options) (*Result[T], error) {
	if req == nil {
		req = &Request{}
	}

	for _, f := range req.Filters {
		if err := src.Filter(f); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	total, err := src.Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sort := opts.DefaultSort
	if req.Sort != nil {
		sort = *req.Sort
	}
	if sort.By != "" {
		if err := src.Sort(sort); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if req.Page != nil {
		src.Page(*req.Page)
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if rows == nil {
		rows = []T{}
	}

	return &Result[T]{Rows: rows, TotalRows: total}, nil
}
