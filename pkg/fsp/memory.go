package fsp

import (
	"context"
	"slices"
)

// MemorySource runs the pipeline over a slice of records. The input slice is
// never modified.
type MemorySource[T Record] struct {
	// Predicates override the built-in filter semantics per field path.
	Predicates map[string]Predicate

	rows    []T
	filters []Filter
	sort    *Sort
	page    *Page

	matched []T
	done    bool
}

// NewMemorySource returns a source over rows, in their given order.
func NewMemorySource[T Record](rows []T) *MemorySource[T] {
	return &MemorySource[T]{rows: rows}
}

func (s *MemorySource[T]) Filter(f Filter) error {
	s.filters = append(s.filters, f)
	s.done = false
	return nil
}

func (s *MemorySource[T]) Count(_ context.Context) (int, error) {
	return len(s.apply()), nil
}

func (s *MemorySource[T]) Sort(sort Sort) error {
	s.sort = &sort
	return nil
}

func (s *MemorySource[T]) Page(p Page) {
	s.page = &p
}

func (s *MemorySource[T]) Rows(_ context.Context) ([]T, error) {
	rows := slices.Clone(s.apply())

	if s.sort != nil {
		by, desc := s.sort.By, s.sort.Order == OrderDesc
		slices.SortStableFunc(rows, func(a, b T) int {
			return compareAt(a, b, by, desc)
		})
	}

	if s.page != nil {
		start := min(s.page.Offset(), len(rows))
		end := start + min(s.page.Size, len(rows)-start)
		rows = rows[start:end]
	}

	return rows, nil
}

// apply filters the input in one pass and caches the matches.
func (s *MemorySource[T]) apply() []T {
	if s.done {
		return s.matched
	}
	s.matched = make([]T, 0, len(s.rows))
	for _, r := range s.rows {
		if s.matches(r) {
			s.matched = append(s.matched, r)
		}
	}
	s.done = true
	return s.matched
}

func (s *MemorySource[T]) matches(r T) bool {
	for _, f := range s.filters {
		if p, ok := s.Predicates[f.FilterBy]; ok {
			if !p(r, f) {
				return false
			}
			continue
		}
		if !Match(r, f) {
			return false
		}
	}
	return true
}

// compareAt orders a and b by the value at path. Missing values come first
// in ascending order and last in descending order.
func compareAt(a, b Record, path string, desc bool) int {
	av, aok := a.Lookup(path)
	bv, bok := b.Lookup(path)

	var c int
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		c = -1
	case !bok:
		c = 1
	default:
		c = Compare(av, bv)
	}
	if desc {
		return -c
	}
	return c
}
