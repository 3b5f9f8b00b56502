package lang

import "strings"

type frameKind uint8

const (
	frameRoot   frameKind = iota // caller's context
	frameParams                  // sub-template parameters
	frameLoop                    // for-loop iteration bindings
)

type frame struct {
	vars Map
	kind frameKind
}

// scope is a stack of variable frames. Lookups search the frames innermost
// first, so parameters and loop bindings shadow outer variables without
// copying or modifying them.
type scope []frame

func newScope(root Map) scope {
	if root == nil {
		root = Map{}
	}

	return scope{{vars: root, kind: frameRoot}}
}

// push adds a frame on top of the stack.
func (s *scope) push(kind frameKind, vars Map) {
	*s = append(*s, frame{vars: vars, kind: kind})
}

// pop discards the frame pushed last.
func (s *scope) pop() {
	*s = (*s)[:len(*s)-1]
}

// resolve finds key in the innermost frame that defines it.
func (s scope) resolve(key string) (Value, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if v, ok := s[i].vars[key]; ok {
			return v, true
		}
	}

	return Value{}, false
}

// lookup resolves a dotted key path. The first segment is searched through
// the frame stack; the remaining segments walk nested maps.
func (s scope) lookup(path string) (Value, bool) {
	head, rest, more := strings.Cut(path, ".")

	v, ok := s.resolve(head)
	if !ok || !more {
		return v, ok
	}

	if v.kind != KindMap {
		return Value{}, false
	}

	return v.m.Lookup(rest)
}

// writable returns the innermost frame that is not a loop frame.
// Definitions made inside a loop body outlive the iteration.
func (s scope) writable() Map {
	for i := len(s) - 1; i > 0; i-- {
		if s[i].kind != frameLoop {
			return s[i].vars
		}
	}

	return s[0].vars
}

// define stores v at path. A single-segment path is bound in the writable
// frame. For a dotted path the leading segments must resolve to existing
// maps; only the final segment is created. It reports whether v was stored.
func (s scope) define(path string, v Value) bool {
	head, rest, more := strings.Cut(path, ".")
	if head == "" {
		return false
	}

	if !more {
		s.writable()[head] = v

		return true
	}

	parent, ok := s.resolve(head)
	if !ok || parent.kind != KindMap {
		return false
	}

	m := parent.m

	segs := strings.Split(rest, ".")
	for _, seg := range segs[:len(segs)-1] {
		next, ok := m[seg]
		if !ok || next.kind != KindMap {
			return false
		}

		m = next.m
	}

	last := segs[len(segs)-1]
	if last == "" {
		return false
	}

	m[last] = v

	return true
}
