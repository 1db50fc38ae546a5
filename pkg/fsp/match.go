package fsp

import (
	"cmp"
	"strings"
	"time"
)

// Predicate decides whether a record passes a filter. A predicate
// registered for a field replaces the built-in search and select semantics
// for that field.
type Predicate func(r Record, f Filter) bool

// Match reports whether r passes f using the built-in semantics:
//   - search: the value is a string containing f.Search, ignoring case.
//     The search text is literal. An empty search matches everything.
//   - select: the value equals one of f.Values. An empty set matches
//     everything.
//
// A path that doesn't resolve never matches a non-empty filter.
func Match(r Record, f Filter) bool {
	switch f.FilterType {
	case FilterSearch:
		if f.Search == "" {
			return true
		}
		v, ok := r.Lookup(f.FilterBy)
		if !ok {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		return strings.Contains(foldCase(s), foldCase(f.Search))
	case FilterSelect:
		if len(f.Values) == 0 {
			return true
		}
		v, ok := r.Lookup(f.FilterBy)
		if !ok {
			return false
		}
		for _, want := range f.Values {
			if Equal(v, want) {
				return true
			}
		}
		return false
	}
	return false
}

// Equal compares two scalar values. Numbers compare by value whatever their
// Go type; otherwise both values must be of the same kind. Strings never
// equal numbers or booleans.
func Equal(a, b any) bool {
	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	}
	return false
}

// Compare orders two scalar values. Values of different kinds order by kind:
// booleans, then numbers, then strings, then times.
func Compare(a, b any) int {
	ka, kb := kind(a), kind(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindBool:
		return cmp.Compare(boolInt(a.(bool)), boolInt(b.(bool)))
	case kindNumber:
		an, _ := number(a)
		bn, _ := number(b)
		return cmp.Compare(an, bn)
	case kindString:
		return strings.Compare(a.(string), b.(string))
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return 0
}

const (
	kindBool = iota
	kindNumber
	kindString
	kindTime
	kindOther
)

func kind(v any) int {
	if _, ok := number(v); ok {
		return kindNumber
	}
	switch v.(type) {
	case bool:
		return kindBool
	case string:
		return kindString
	case time.Time:
		return kindTime
	}
	return kindOther
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// foldCase lowercases the ASCII letters of s and leaves every other rune
// alone, matching SQLite's LOWER.
func foldCase(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
