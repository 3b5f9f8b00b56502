package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/tmpl/lang"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func text(t *testing.T, m lang.Map, path string) string {
	t.Helper()

	v, ok := m.Lookup(path)
	if !ok {
		t.Fatalf("%s not found in %v", path, m)
	}

	return v.String()
}

func TestDecode_Formats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		checks  map[string]string
	}{
		{
			name:    "yaml",
			file:    "a.yaml",
			content: "person:\n  name: Bob\n  age: 42\n  admin: true\n  friends: [Ann, Sue]\n",
			checks: map[string]string{
				"person.name":    "Bob",
				"person.age":     "42",
				"person.admin":   "true",
				"person.friends": "[Ann Sue]",
			},
		},
		{
			name:    "json",
			file:    "b.json",
			content: `{"title": "Hi", "ratio": 0.5, "tags": ["x"]}`,
			checks:  map[string]string{"title": "Hi", "ratio": "0.5", "tags": "[x]"},
		},
		{
			name:    "toml",
			file:    "c.toml",
			content: "title = \"Doc\"\n[server]\nport = 8080\n[[items]]\nname = \"one\"\n",
			checks:  map[string]string{"title": "Doc", "server.port": "8080", "items": "[map[name:one]]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			m, err := New().LoadFile(t.Context(), path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}

			for p, want := range tt.checks {
				if got := text(t, m, p); got != want {
					t.Errorf("%s = %q, want %q", p, got, want)
				}
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  Format
		want    error
	}{
		{"not_mapping", "- a\n- b\n", FormatYAML, ErrNotMapping},
		{"bad_yaml", "a: [\n", FormatYAML, ErrDecode},
		{"bad_toml", "a = = 1", FormatTOML, ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(t.Context(), strings.NewReader(tt.content), tt.format)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}

	m, err := Decode(t.Context(), strings.NewReader(""), FormatYAML)
	if err != nil || len(m) != 0 {
		t.Errorf("empty document: %v, %v", m, err)
	}
}

func TestFormatOf(t *testing.T) {
	if f, err := FormatOf("x.YML"); err != nil || f != FormatYAML {
		t.Errorf("FormatOf(x.YML) = %v, %v", f, err)
	}

	if _, err := FormatOf("x.ini"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestLoader_SearchPath(t *testing.T) {
	inc := t.TempDir()
	env := t.TempDir()

	writeFile(t, env, "shared.yaml", "from: env\n")
	writeFile(t, inc, "shared.yaml", "from: include\n")
	writeFile(t, env, "only.yaml", "only: env\n")

	l := New(WithInclude(inc), WithSearchPath(env+string(os.PathListSeparator)+inc))

	dirs := l.SearchPath()
	if len(dirs) != 2 || dirs[0] != inc {
		t.Fatalf("SearchPath() = %v, want include dir first without duplicates", dirs)
	}

	m, err := l.Load(t.Context(), "shared.yaml", "only.yaml")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if got := text(t, m, "from"); got != "include" {
		t.Errorf("expected include dir to win, got %q", got)
	}

	if got := text(t, m, "only"); got != "env" {
		t.Errorf("expected TMPL_PATH dir to be searched, got %q", got)
	}

	if _, err := l.Resolve("missing.yaml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoader_MergeOrderAndDuplicates(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.yaml", "m:\n  x: 1\n  y: 1\n")
	b := writeFile(t, dir, "b.json", `{"m": {"y": 2}}`)

	m, err := New().Load(t.Context(), a, b, filepath.Join(dir, ".", "a.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if text(t, m, "m.x") != "1" || text(t, m, "m.y") != "2" {
		t.Errorf("unexpected merge result: %v", m)
	}
}

func TestLoader_Stdin(t *testing.T) {
	l := New(WithStdin(strings.NewReader("k: v\n")))

	m, err := l.Load(t.Context(), Stdin)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if text(t, m, "k") != "v" {
		t.Errorf("unexpected stdin data: %v", m)
	}
}

func TestAssign(t *testing.T) {
	tests := []struct {
		assignment string
		path       string
		want       string
	}{
		{"name=bob", "name", "bob"},
		{"greeting=\"hi \" + who", "greeting", "hi ann"},
		{"n=1 + 2", "n", "3"},
		{"flag=who == \"ann\"", "flag", "true"},
		{"list=[1, 'a']", "list", "[1 a]"},
		{"deep.key=who", "deep.key", "ann"},
		{"blank=", "blank", ""},
		{"sentence=hello world", "sentence", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.assignment, func(t *testing.T) {
			m := lang.Map{"who": lang.StringValue("ann")}

			if err := Assign(m, tt.assignment); err != nil {
				t.Fatalf("Assign error: %v", err)
			}

			if got := text(t, m, tt.path); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestAssignString(t *testing.T) {
	m := lang.Map{}

	for _, a := range []string{"ver=1.10", "id=007", "app.expr=1 + 2", "eq=a=b"} {
		if err := AssignString(m, a); err != nil {
			t.Fatalf("AssignString(%q): %v", a, err)
		}
	}

	for path, want := range map[string]string{
		"ver":      "1.10",
		"id":       "007",
		"app.expr": "1 + 2",
		"eq":       "a=b",
	} {
		if v, ok := m.Lookup(path); !ok || v.Kind() != lang.KindString || v.String() != want {
			t.Errorf("%s = %v, want %q", path, v, want)
		}
	}

	if err := AssignString(m, "novalue"); !errors.Is(err, ErrAssignment) {
		t.Errorf("AssignString without '=' error = %v, want ErrAssignment", err)
	}
}

func TestAssign_Errors(t *testing.T) {
	for _, in := range []string{"novalue", "=x", " =x"} {
		if err := Assign(lang.Map{}, in); !errors.Is(err, ErrAssignment) {
			t.Errorf("Assign(%q) error = %v, want ErrAssignment", in, err)
		}
	}

	m := lang.Map{"s": lang.StringValue("scalar")}
	if err := Assign(m, "s.x=1"); !errors.Is(err, lang.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestEnviron(t *testing.T) {
	m := Environ([]string{"A=1", "B=x=y", "=skip", "C"})

	if text(t, m, "A") != "1" || text(t, m, "B") != "x=y" {
		t.Errorf("unexpected environ map: %v", m)
	}

	if len(m) != 2 {
		t.Errorf("expected 2 entries, got %v", m)
	}
}
