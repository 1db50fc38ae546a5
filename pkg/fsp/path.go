package fsp

import "strings"

// Record is anything whose fields can be addressed by dotted paths such as
// "author.name". Lookup reports false when the path doesn't resolve to a
// value.
type Record interface {
	Lookup(path string) (any, bool)
}

// Map is a Record backed by nested maps.
type Map map[string]any

// Lookup walks the map one path segment at a time. It descends only through
// nested maps and Records; any other value in the middle of the path is a
// miss.
func (m Map) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var cur any = map[string]any(m)
	rest := path
	for rest != "" {
		seg, tail, more := strings.Cut(rest, ".")
		if seg == "" || (more && tail == "") {
			return nil, false
		}

		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case Map:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case Record:
			return node.Lookup(rest)
		default:
			return nil, false
		}
		rest = tail
	}

	if cur == nil {
		return nil, false
	}
	return cur, true
}
