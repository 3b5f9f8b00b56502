package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	// KindString is a string. The zero Value is the empty string.
	KindString Kind = iota

	// KindBool is a boolean.
	KindBool

	// KindList is an ordered sequence of values.
	KindList

	// KindMap is a string-keyed mapping of values.
	KindMap

	// KindTemplate is a sub-template: a parsed node sequence with formal
	// parameter names.
	KindTemplate
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"

	case KindBool:
		return "bool"

	case KindList:
		return "list"

	case KindMap:
		return "map"

	case KindTemplate:
		return "template"

	default:
		return "unknown"
	}
}

// Value is a tagged union of the data types a template operates on.
// A Value holds exactly one variant; assigning a different variant replaces
// it. Lists and maps share their backing storage when a Value is copied.
type Value struct {
	list []Value
	m    Map
	tmpl *SubTemplate
	str  string
	kind Kind
	b    bool
}

// BoolValue returns a Value holding b.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// ListValue returns a Value holding the given elements in order.
func ListValue(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: KindList, list: elems}
}

// MapValue returns a Value holding m. A nil m is replaced by an empty map.
func MapValue(m Map) Value {
	if m == nil {
		m = Map{}
	}

	return Value{kind: KindMap, m: m}
}

// SubTemplateValue returns a Value holding t.
func SubTemplateValue(t *SubTemplate) Value {
	return Value{kind: KindTemplate, tmpl: t}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Empty reports whether v is considered false in a boolean context.
// Strings are empty at zero length, booleans when false, lists and maps when
// they have no elements. A sub-template is never empty.
func (v Value) Empty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""

	case KindBool:
		return !v.b

	case KindList:
		return len(v.list) == 0

	case KindMap:
		return len(v.m) == 0

	default:
		return false
	}
}

// Text returns the string rendering of a scalar value.
// Booleans render as "true" or "false". Lists, maps and sub-templates
// cannot be rendered as text.
func (v Value) Text() (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil

	case KindBool:
		return strconv.FormatBool(v.b), nil

	default:
		return "", ErrNotText.With(slog.String("kind", v.kind.String()))
	}
}

// List returns the elements of a list value.
func (v Value) List() ([]Value, error) {
	if v.kind != KindList {
		return nil, ErrNotList.With(slog.String("kind", v.kind.String()))
	}

	return v.list, nil
}

// Map returns the entries of a map value.
func (v Value) Map() (Map, error) {
	if v.kind != KindMap {
		return nil, ErrNotMap.With(slog.String("kind", v.kind.String()))
	}

	return v.m, nil
}

// SubTemplate returns the sub-template held by v.
func (v Value) SubTemplate() (*SubTemplate, error) {
	if v.kind != KindTemplate || v.tmpl == nil {
		return nil, ErrNotTemplate.With(slog.String("kind", v.kind.String()))
	}

	return v.tmpl, nil
}

// String implements fmt.Stringer. It is intended for diagnostics; use
// [Value.Text] to render a value into template output.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str

	case KindBool:
		return strconv.FormatBool(v.b)

	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}

		return "[" + strings.Join(parts, " ") + "]"

	case KindMap:
		parts := make([]string, 0, len(v.m))
		for _, k := range v.m.Keys() {
			parts = append(parts, k+":"+v.m[k].String())
		}

		return "map[" + strings.Join(parts, " ") + "]"

	case KindTemplate:
		if v.tmpl == nil {
			return "template()"
		}

		return "template(" + strings.Join(v.tmpl.params, ", ") + ")"

	default:
		return ""
	}
}

// SubTemplate is a reusable fragment of a compiled template.
// It re-renders its body against the current context on every invocation.
type SubTemplate struct {
	tree   *tree
	body   []int
	params []string
}

// Params returns the formal parameter names of t, in order.
func (t *SubTemplate) Params() []string {
	return append([]string(nil), t.params...)
}
