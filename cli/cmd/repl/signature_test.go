package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/tmpl/lang"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantIndex int
		wantIn    bool
	}{
		{"no_call", "{$ greeting", "", 0, false},
		{"first_arg", "{$ row(", "row", 0, true},
		{"second_arg", "{$ row(a, ", "row", 1, true},
		{"dotted_name", "{$ macros.row(a, b, ", "macros.row", 2, true},
		{"closed_call", "{$ row(a) ", "", 0, false},
		{"nested_inner", "{$ row(count(xs", "count", 0, true},
		{"nested_outer", "{$ row(count(xs), ", "row", 1, true},
		{"comma_in_string", `{$ row("a,b", `, "row", 1, true},
		{"paren_in_string", `{$ row("(", `, "row", 1, true},
		{"previous_block", "{$ row(a) }{$ x", "", 0, false},
		{"builtin", "{% if empty(", "empty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, len(tt.input))
			if got.inCall != tt.wantIn || got.name != tt.wantName || got.argIndex != tt.wantIndex {
				t.Errorf("detectFunctionCall(%q) = %+v, want {name:%q argIndex:%d inCall:%v}",
					tt.input, got, tt.wantName, tt.wantIndex, tt.wantIn)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	data := lang.Map{}
	if err := data.SetTemplate(t.Context(), "macros.row", "{$a}{$b}", "a", "b"); err != nil {
		t.Fatal(err)
	}

	data.Set("name", lang.StringValue("x"))

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"macros.row", "macros.row(a, b)", []string{"a", "b"}},
		{"count", "count(list)", []string{"list"}},
		{"defined", "defined(path)", []string{"path"}},
		{"name", "", nil},
		{"missing", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(data, tt.name)
			if sig != tt.wantSig || !slices.Equal(params, tt.wantParams) {
				t.Errorf("getSignature(%q) = (%q, %v), want (%q, %v)",
					tt.name, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("empty name rendered %q", got)
	}

	hint := renderSignatureHint("row", []string{"a", "b"}, 1)
	for _, want := range []string{"row", "a", "b"} {
		if !strings.Contains(hint, want) {
			t.Errorf("hint %q missing %q", hint, want)
		}
	}
}
