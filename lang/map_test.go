package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestMap_Lookup(t *testing.T) {
	m := Map{
		"a": MapValue(Map{
			"b": MapValue(Map{"c": StringValue("deep")}),
			"s": StringValue("leaf"),
		}),
	}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"a.b.c", "deep", true},
		{"a.s", "leaf", true},
		{"a.s.x", "", false},
		{"a.nope", "", false},
		{"nope", "", false},
		{"a.", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, ok := m.Lookup(tt.path)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}

			if ok && v.String() != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.path, v.String(), tt.want)
			}
		})
	}
}

func TestMap_SetPath(t *testing.T) {
	m := Map{"s": StringValue("x")}

	if err := m.SetPath("a.b.c", StringValue("v")); err != nil {
		t.Fatalf("SetPath error: %v", err)
	}

	if v, ok := m.Lookup("a.b.c"); !ok || v.String() != "v" {
		t.Errorf("expected a.b.c = v, got %v (%v)", v, ok)
	}

	if err := m.SetPath("s.t", StringValue("v")); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath through scalar, got %v", err)
	}

	if err := m.SetPath("a..c", StringValue("v")); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath for empty segment, got %v", err)
	}
}

func TestMap_KeysAndPaths(t *testing.T) {
	m := Map{
		"b": StringValue("1"),
		"a": MapValue(Map{"y": StringValue("2"), "x": ListValue()}),
	}

	if got, want := m.Keys(), []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	if got, want := m.Paths(), []string{"a", "a.x", "a.y", "b"}; !slices.Equal(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}

	var seen []string
	for k := range m.All() {
		seen = append(seen, k)

		break
	}

	if !slices.Equal(seen, []string{"a"}) {
		t.Errorf("All() did not stop early: %v", seen)
	}
}

func TestMap_CloneAndMerge(t *testing.T) {
	orig := Map{"m": MapValue(Map{"k": StringValue("1")}), "l": texts("a")}

	c := orig.Clone()
	if err := c.SetPath("m.k", StringValue("2")); err != nil {
		t.Fatalf("SetPath error: %v", err)
	}

	if v, _ := orig.Lookup("m.k"); v.String() != "1" {
		t.Errorf("clone shares nested map with original")
	}

	dst := Map{"m": MapValue(Map{"k": StringValue("1"), "keep": BoolValue(true)})}
	dst.Merge(Map{"m": MapValue(Map{"k": StringValue("over")}), "n": StringValue("new")})

	if v, _ := dst.Lookup("m.k"); v.String() != "over" {
		t.Errorf("merge did not override m.k: %v", v)
	}

	if _, ok := dst.Lookup("m.keep"); !ok {
		t.Errorf("merge dropped m.keep")
	}

	if _, ok := dst.Lookup("n"); !ok {
		t.Errorf("merge did not add n")
	}
}

func TestValue_Semantics(t *testing.T) {
	sub, err := NewSubTemplate(t.Context(), "x")
	if err != nil {
		t.Fatalf("NewSubTemplate error: %v", err)
	}

	tests := []struct {
		name  string
		v     Value
		empty bool
		text  string
		err   error
	}{
		{"zero", Value{}, true, "", nil},
		{"string", StringValue("a"), false, "a", nil},
		{"true", BoolValue(true), false, "true", nil},
		{"false", BoolValue(false), true, "false", nil},
		{"empty_list", ListValue(), true, "", ErrNotText},
		{"list", texts("a"), false, "", ErrNotText},
		{"empty_map", MapValue(nil), true, "", ErrNotText},
		{"template", SubTemplateValue(sub), false, "", ErrNotText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Empty(); got != tt.empty {
				t.Errorf("Empty() = %v, want %v", got, tt.empty)
			}

			s, err := tt.v.Text()
			if !errors.Is(err, tt.err) {
				t.Fatalf("Text() error = %v, want %v", err, tt.err)
			}

			if s != tt.text {
				t.Errorf("Text() = %q, want %q", s, tt.text)
			}
		})
	}

	if _, err := StringValue("x").List(); !errors.Is(err, ErrNotList) {
		t.Errorf("expected ErrNotList, got %v", err)
	}

	if _, err := StringValue("x").Map(); !errors.Is(err, ErrNotMap) {
		t.Errorf("expected ErrNotMap, got %v", err)
	}

	if _, err := StringValue("x").SubTemplate(); !errors.Is(err, ErrNotTemplate) {
		t.Errorf("expected ErrNotTemplate, got %v", err)
	}
}

func TestScope_Shadowing(t *testing.T) {
	root := Map{"x": StringValue("root"), "m": MapValue(Map{"k": StringValue("v")})}
	s := newScope(root)

	s.push(frameParams, Map{"x": StringValue("param")})
	s.push(frameLoop, Map{"y": StringValue("loop")})

	if v, _ := s.lookup("x"); v.String() != "param" {
		t.Errorf("expected param to shadow root, got %v", v)
	}

	if v, _ := s.lookup("m.k"); v.String() != "v" {
		t.Errorf("expected m.k through the chain, got %v", v)
	}

	if !s.define("d", StringValue("def")) {
		t.Fatalf("define failed")
	}

	if _, ok := s[1].vars["d"]; !ok {
		t.Errorf("define did not bind into the innermost non-loop frame")
	}

	s.pop()
	s.pop()

	if v, _ := s.lookup("x"); v.String() != "root" {
		t.Errorf("root value changed: %v", v)
	}

	if _, ok := root["d"]; ok {
		t.Errorf("definition inside parameters frame leaked into root")
	}
}

func TestScope_DefineDotted(t *testing.T) {
	s := newScope(Map{"a": MapValue(Map{"b": MapValue(nil)}), "s": StringValue("x")})

	tests := []struct {
		path string
		ok   bool
	}{
		{"a.b.c", true},
		{"a.n", true},
		{"a.z.c", false},
		{"s.t", false},
		{"nope.t", false},
		{"a.", false},
		{".a", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := s.define(tt.path, StringValue("v")); got != tt.ok {
				t.Errorf("define(%q) = %v, want %v", tt.path, got, tt.ok)
			}
		})
	}
}
