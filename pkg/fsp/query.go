package fsp

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// ColumnType tells a QuerySource which filters a column can satisfy.
type ColumnType int

const (
	ColumnNumber ColumnType = iota
	ColumnText
	ColumnBool
)

// Column maps a field path to a SQL column.
type Column struct {
	// Expr is the qualified column name, e.g. "t.text" or "author.name".
	Expr string
	Type ColumnType
}

// Condition applies a filter to a query in place of the built-in semantics.
type Condition func(q *bun.SelectQuery, f Filter) *bun.SelectQuery

// QueryConfig describes how field paths map onto a bun model.
type QueryConfig struct {
	// Columns holds every path that can be filtered or sorted.
	Columns map[string]Column
	// Relations maps a path prefix ("author") to the belongs-to bun relation
	// ("Author") that has to be joined to reach it.
	Relations map[string]string
	// Conditions override the built-in filter semantics per path.
	Conditions map[string]Condition
	// Tiebreaker is the default ORDER BY expression, appended after any
	// requested sort.
	Tiebreaker string
}

// QuerySource runs the pipeline as a single bun select query.
type QuerySource[T any] struct {
	cfg     QueryConfig
	dialect dialect.Name
	rows    []T
	q       *bun.SelectQuery
	joined  map[string]bool
}

// NewQuerySource starts a select over the model T.
func NewQuerySource[T any](db bun.IDB, cfg QueryConfig) *QuerySource[T] {
	s := &QuerySource[T]{cfg: cfg, dialect: db.Dialect().Name(), joined: map[string]bool{}}
	s.q = db.NewSelect().Model(&s.rows)
	return s
}

// Join eager loads the relation registered under prefix. Joining the same
// relation twice is a no-op.
func (s *QuerySource[T]) Join(prefix string) error {
	if s.joined[prefix] {
		return nil
	}
	rel, ok := s.cfg.Relations[prefix]
	if !ok {
		return errors.Errorf("unknown relation %q", prefix)
	}
	s.q = s.q.Relation(rel)
	s.joined[prefix] = true
	return nil
}

func (s *QuerySource[T]) Filter(f Filter) error {
	if cond, ok := s.cfg.Conditions[f.FilterBy]; ok {
		if err := s.joinFor(f.FilterBy); err != nil {
			return err
		}
		s.q = cond(s.q, f)
		return nil
	}

	col, err := s.column(f.FilterBy)
	if err != nil {
		return err
	}

	switch f.FilterType {
	case FilterSearch:
		if f.Search == "" {
			return nil
		}
		if col.Type != ColumnText {
			s.q = s.q.Where("1 = 0")
			return nil
		}
		pattern := "%" + escapeLike(foldCase(f.Search)) + "%"
		s.q = s.q.Where(s.foldExpr()+" LIKE ? ESCAPE '!'", bun.Ident(col.Expr), pattern)
	case FilterSelect:
		if len(f.Values) == 0 {
			return nil
		}
		values := typedValues(col.Type, f.Values)
		if len(values) == 0 {
			s.q = s.q.Where("1 = 0")
			return nil
		}
		s.q = s.q.Where("? IN (?)", bun.Ident(col.Expr), bun.In(values))
	default:
		return errors.Errorf("unknown filter type %q", f.FilterType)
	}
	return nil
}

func (s *QuerySource[T]) Count(ctx context.Context) (int, error) {
	n, err := s.q.Count(ctx)
	return n, errors.WithStack(err)
}

func (s *QuerySource[T]) Sort(sort Sort) error {
	col, err := s.column(sort.By)
	if err != nil {
		return err
	}
	if sort.Order == OrderDesc {
		s.q = s.q.OrderExpr("? DESC NULLS LAST", bun.Ident(col.Expr))
	} else {
		s.q = s.q.OrderExpr("? ASC NULLS FIRST", bun.Ident(col.Expr))
	}
	return nil
}

func (s *QuerySource[T]) Page(p Page) {
	s.q = s.q.Limit(p.Size).Offset(p.Offset())
}

func (s *QuerySource[T]) Rows(ctx context.Context) ([]T, error) {
	if s.cfg.Tiebreaker != "" {
		s.q = s.q.OrderExpr(s.cfg.Tiebreaker)
	}
	if err := s.q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return s.rows, nil
}

func (s *QuerySource[T]) column(path string) (Column, error) {
	col, ok := s.cfg.Columns[path]
	if !ok {
		return Column{}, errors.Errorf("unknown field %q", path)
	}
	return col, s.joinFor(path)
}

func (s *QuerySource[T]) joinFor(path string) error {
	prefix, _, nested := strings.Cut(path, ".")
	if !nested {
		return nil
	}
	if _, ok := s.cfg.Relations[prefix]; !ok {
		return nil
	}
	return s.Join(prefix)
}

// typedValues keeps the values a column of type t can be equal to.
func typedValues(t ColumnType, values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		switch v.(type) {
		case string:
			if t == ColumnText {
				out = append(out, v)
			}
		case bool:
			if t == ColumnBool {
				out = append(out, v)
			}
		default:
			if _, ok := number(v); ok && t == ColumnNumber {
				out = append(out, v)
			}
		}
	}
	return out
}

// foldExpr folds a column the way foldCase folds strings. PostgreSQL's LOWER
// follows the database collation, so only ASCII letters are translated there.
func (s *QuerySource[T]) foldExpr() string {
	if s.dialect == dialect.PG {
		return "TRANSLATE(?, '" + asciiUpper + "', '" + asciiLower + "')"
	}
	return "LOWER(?)"
}

const (
	asciiUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	asciiLower = "abcdefghijklmnopqrstuvwxyz"
)

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
