package lang

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Map is a string-keyed collection of values and the type of a template
// context. Assigning an existing key replaces its value.
//
// A Map is not safe for concurrent mutation. Rendering mutates the context
// it is given (def statements bind sub-templates into it), so concurrent
// renders must each use their own Map.
type Map map[string]Value

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m[key]

	return v, ok
}

// Set stores v under key and returns m.
func (m Map) Set(key string, v Value) Map {
	m[key] = v

	return m
}

// Lookup resolves a dotted key path by walking nested maps.
// Any intermediate segment that is absent or not a map is a failure.
func (m Map) Lookup(path string) (Value, bool) {
	head, rest, more := strings.Cut(path, ".")

	v, ok := m[head]
	if !ok {
		return Value{}, false
	}

	if !more {
		return v, true
	}

	if v.kind != KindMap {
		return Value{}, false
	}

	return v.m.Lookup(rest)
}

// SetPath stores v at a dotted key path, creating intermediate maps as
// needed. It fails if a segment is empty or an existing intermediate value
// is not a map.
func (m Map) SetPath(path string, v Value) error {
	segs := strings.Split(path, ".")
	if slices.Contains(segs, "") {
		return ErrInvalidPath.With(slog.String("path", path))
	}

	cur := m
	for i, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]
		if !ok {
			next = MapValue(nil)
			cur[seg] = next
		}

		if next.kind != KindMap {
			return ErrInvalidPath.With(
				slog.String("path", path),
				slog.String("segment", strings.Join(segs[:i+1], ".")),
				slog.String("kind", next.kind.String()),
			)
		}

		cur = next.m
	}

	cur[segs[len(segs)-1]] = v

	return nil
}

// SetTemplate compiles src as a sub-template with the given formal
// parameters and stores it at path.
func (m Map) SetTemplate(
	ctx context.Context,
	path, src string,
	params ...string,
) error {
	t, err := NewSubTemplate(ctx, src, params...)
	if err != nil {
		return err
	}

	return m.SetPath(path, SubTemplateValue(t))
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	return sortedKeys(m)
}

// All returns an iterator over the entries of m in key order.
func (m Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range sortedKeys(m) {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}

// Paths returns every dotted key path reachable in m, depth first in key
// order. Lists are not descended.
func (m Map) Paths() []string {
	var out []string

	for k, v := range m.All() {
		out = append(out, k)

		if v.kind == KindMap {
			for _, sub := range v.m.Paths() {
				out = append(out, k+"."+sub)
			}
		}
	}

	return out
}

// Clone returns a deep copy of m. Sub-templates are shared.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}

	c := make(Map, len(m))
	for k, v := range m {
		c[k] = v.clone()
	}

	return c
}

// Merge copies every entry of src into m. Where both hold a map under the
// same key the maps are merged recursively; otherwise src wins.
func (m Map) Merge(src Map) Map {
	for k, v := range src {
		if cur, ok := m[k]; ok && cur.kind == KindMap && v.kind == KindMap {
			cur.m.Merge(v.m)

			continue
		}

		m[k] = v.clone()
	}

	return m
}

func (v Value) clone() Value {
	switch v.kind {
	case KindList:
		elems := make([]Value, len(v.list))
		for i, e := range v.list {
			elems[i] = e.clone()
		}

		return ListValue(elems...)

	case KindMap:
		return MapValue(v.m.Clone())

	default:
		return v
	}
}
