package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/tmpl/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "bar.baz", 7, "baz", 4, 7},
		{"variable_block", "{$ ti", 5, "ti", 3, 5},
		{"statement_block", "{% for x in pe", 14, "pe", 12, 14},
		{"after_paren", "{$ row(fo", 9, "fo", 7, 9},
		{"after_comma", "{$ row(a, fo", 12, "fo", 10, 12},
		{"after_comparison", "{% if a == fo", 13, "fo", 11, 13},
		{"empty_at_boundary", "{$ ", 3, "", 3, 3},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"command", ":ke", 3, "ke", 1, 3},
		{"empty_after_dot", "{$ site.", 8, "", 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "bar.baz.", 8, "bar.baz"},
		{"in_block", "{$ site.page.", 13, "site.page"},
		{"after_paren", "{$ f(bar.baz.", 13, "bar.baz"},
		{"no_chain", "{$ ", 3, ""},
		{"deep_chain", "a.b.c.", 6, "a.b.c"},
		{"after_equals", "{% if x == a.b.", 15, "a.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestChildCandidates(t *testing.T) {
	data := lang.Map{
		"site": lang.MapValue(lang.Map{
			"title": lang.StringValue("Home"),
			"pages": lang.ListValue(),
		}),
		"name": lang.StringValue("x"),
	}

	top := childCandidates(data, "")
	for _, want := range []string{"site", "name", "for", "endif", "count", "defined"} {
		if !slices.Contains(top, want) {
			t.Errorf("top-level candidates missing %q: %v", want, top)
		}
	}

	if got := childCandidates(data, "site"); !slices.Equal(got, []string{"pages", "title"}) {
		t.Errorf("childCandidates(site) = %v", got)
	}

	if got := childCandidates(data, "name"); got != nil {
		t.Errorf("childCandidates of a string = %v, want nil", got)
	}

	if got := childCandidates(data, "missing"); got != nil {
		t.Errorf("childCandidates of a missing path = %v, want nil", got)
	}
}

func TestComputeMatches(t *testing.T) {
	data := lang.Map{
		"site": lang.MapValue(lang.Map{"title": lang.StringValue("Home")}),
	}

	tests := []struct {
		name  string
		input string
		want  string // best match, or "" for none
	}{
		{"key", "{$ si", "site"},
		{"member", "{$ site.", "title"},
		{"keyword", "{% endf", "endfor"},
		{"command", ":qu", "quit"},
		{"command_argument", ":load sit", ""},
		{"empty_top_level", "{$ ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t.Context(), Config{Data: data}, NewHistory(""))
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()

			got := ""
			if len(matches) > 0 {
				got = matches[0].Str
			}

			if got != tt.want {
				t.Errorf("best match for %q = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsCallable(t *testing.T) {
	sub, err := lang.NewSubTemplate(t.Context(), "{$a}", "a")
	if err != nil {
		t.Fatal(err)
	}

	data := lang.Map{"row": lang.SubTemplateValue(sub), "name": lang.StringValue("x")}

	for name, want := range map[string]bool{"row": true, "count": true, "name": false, "nope": false} {
		if got := isCallable(data, name); got != want {
			t.Errorf("isCallable(%q) = %v, want %v", name, got, want)
		}
	}
}
