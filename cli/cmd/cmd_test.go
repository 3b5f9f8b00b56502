package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/kong"
)

type testCLI struct {
	Render Render `cmd:""`
	Check  Check  `cmd:""`
	Dump   Dump   `cmd:""`
	Init   Init   `cmd:""`
}

// parse parses args into a fresh command tree.
func parse(t *testing.T, args ...string) *kong.Context {
	t.Helper()

	var cli testCLI

	parser, err := kong.New(&cli,
		kong.Name("tmpl"),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
		kong.Vars{ConfigIdentifier: filepath.Join(t.TempDir(), "config.yaml")},
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}

	return ktx
}

// bind makes ctx, carrying the given streams, the context passed to the
// selected command.
func bind(ctx context.Context, ktx *kong.Context, stdin string, out io.Writer) {
	ctx = WithStreams(ctx, Streams{In: strings.NewReader(stdin), Out: out})
	ctx = WithContext(ctx, ktx)

	ktx.BindTo(ctx, (*context.Context)(nil))
}

// run runs the command selected by args with stdin and the returned output
// buffer as its streams.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ktx := parse(t, args...)
	bind(t.Context(), ktx, stdin, &out)

	err := ktx.Run()

	return out.String(), err
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader in different
// goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRender(t *testing.T) {
	dir := t.TempDir()

	hello := writeFile(t, dir, "hello.tmpl", "Hello {$name}!")
	list := writeFile(t, dir, "list.tmpl",
		"{% for x in items %}{$x}{% if not loop.last %},{% endif %}{% endfor %}")
	missing := writeFile(t, dir, "missing.tmpl", "{% for x in nope %}{$x}{% endfor %}")
	broken := writeFile(t, dir, "broken.tmpl", "{% endif %}")
	base := writeFile(t, dir, "base.yaml", "name: World\nitems: [a, b, c]\n")
	over := writeFile(t, dir, "over.json", `{"name": "JSON"}`)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "data file",
			args: []string{"render", "-d", base, hello},
			want: "Hello World!",
		},
		{
			name: "later file wins",
			args: []string{"render", "-d", base, "-d", over, hello},
			want: "Hello JSON!",
		},
		{
			name: "set after files",
			args: []string{"render", "-d", base, "-s", `name="Ann"`, hello},
			want: "Hello Ann!",
		},
		{
			name:  "set-string keeps text",
			stdin: "{$ver} {$id}",
			args:  []string{"render", "-s", "ver=1.10", "-S", "id=007", "-"},
			want:  "1.1 007",
		},
		{
			name:  "set-string after set",
			stdin: "{$v}",
			args:  []string{"render", "-s", "v=1", "--set-string", "v=1.0", "-"},
			want:  "1.0",
		},
		{
			name: "templates in order",
			args: []string{"render", "-d", base, hello, list},
			want: "Hello World!a,b,c",
		},
		{
			name:  "template from stdin",
			stdin: "[{$name}]",
			args:  []string{"render", "-s", `name="in"`, "-"},
			want:  "[in]",
		},
		{
			name:  "data from stdin",
			stdin: "name: piped\n",
			args:  []string{"render", "-d", "-", hello},
			want:  "Hello piped!",
		},
		{
			name:    "undefined key",
			args:    []string{"render", missing},
			wantErr: true,
		},
		{
			name:    "syntax error",
			args:    []string{"render", broken},
			wantErr: true,
		},
		{
			name:    "missing data file",
			args:    []string{"render", "-d", filepath.Join(dir, "none.yaml"), hello},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.stdin, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("run(%v) = %q, want error", tt.args, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("run(%v) error: %v", tt.args, err)
			}

			if got != tt.want {
				t.Errorf("run(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	missing := writeFile(t, dir, "missing.tmpl", "{% for x in nope %}{$x}{% endfor %}")

	_, err := run(t, "", "render", missing)
	if !errors.Is(err, ErrRender) {
		t.Errorf("error = %v, want ErrRender", err)
	}

	_, err = run(t, "", "render", "-d", filepath.Join(dir, "none.yaml"), missing)
	if !errors.Is(err, ErrLoadData) {
		t.Errorf("error = %v, want ErrLoadData", err)
	}
}

func TestRender_Env(t *testing.T) {
	t.Setenv("TMPL_TEST_GREETING", "howdy")

	got, err := run(t, "{$env.TMPL_TEST_GREETING}", "render", "--env", "-")
	if err != nil {
		t.Fatal(err)
	}

	if got != "howdy" {
		t.Errorf("got %q, want %q", got, "howdy")
	}
}

func TestRender_Output(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	got, err := run(t, "{$a}{$b}", "render", "-s", "a=1", "-s", "b=2", "-o", out, "-")
	if err != nil {
		t.Fatal(err)
	}

	if got != "" {
		t.Errorf("stdout = %q, want nothing", got)
	}

	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if string(content) != "12" {
		t.Errorf("output file = %q, want %q", content, "12")
	}
}

func TestRender_Watch(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "t.tmpl", "A={$a};")
	data := writeFile(t, dir, "d.yaml", "a: one\n")

	var out syncBuffer

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	ktx := parse(t, "render", "-w", "-d", data, tmpl)
	bind(ctx, ktx, "", &out)

	done := make(chan error, 1)

	go func() { done <- ktx.Run() }()

	// The watcher starts after the first render, so keep rewriting the data
	// file until the change is picked up.
	deadline := time.Now().Add(10 * time.Second)

	for !strings.Contains(out.String(), "A=two;") {
		if time.Now().After(deadline) {
			t.Fatalf("no render after change; output %q", out.String())
		}

		if strings.Contains(out.String(), "A=one;") {
			if err := os.WriteFile(data, []byte("a: two\n"), 0o600); err != nil {
				t.Fatal(err)
			}
		}

		time.Sleep(50 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("render --watch error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("render --watch did not stop after cancel")
	}

	if got := out.String(); !strings.HasPrefix(got, "A=one;A=two;") {
		t.Errorf("output = %q, want renders before and after the change", got)
	}
}

func TestRender_WatchRejectsStdin(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "t.tmpl", "x")

	for _, args := range [][]string{
		{"render", "-w", "-"},
		{"render", "-w", "-d", "-", tmpl},
	} {
		if _, err := run(t, "a: b\n", args...); !errors.Is(err, ErrWatch) {
			t.Errorf("run(%v) error = %v, want ErrWatch", args, err)
		}
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.tmpl",
		"{% for p in people %}{$p.name}{% endfor %}{$site.title}")
	bad := writeFile(t, dir, "bad.tmpl", "{% endif %}")

	got, err := run(t, "", "check", "--keys", good)
	if err != nil {
		t.Fatalf("check good: %v", err)
	}

	want := good + ": ok\n\tp.name\n\tpeople\n\tsite.title\n"
	if got != want {
		t.Errorf("check --keys =\n%q\nwant\n%q", got, want)
	}

	got, err = run(t, "", "check", good, bad)
	if !errors.Is(err, ErrCheck) {
		t.Errorf("check bad error = %v, want ErrCheck", err)
	}

	if !strings.Contains(got, good+": ok") || strings.Contains(got, bad+": ok") {
		t.Errorf("check output = %q", got)
	}
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "name: World\n")

	t.Run("ast", func(t *testing.T) {
		got, err := run(t, "Hi {$name}", "dump", "ast")
		if err != nil {
			t.Fatal(err)
		}

		for _, want := range []string{`text "Hi "`, "variable name"} {
			if !strings.Contains(got, want) {
				t.Errorf("dump ast missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("yaml", func(t *testing.T) {
		got, err := run(t, "", "dump", "yaml", "-d", base, "-s", "extra.n=1 + 1")
		if err != nil {
			t.Fatal(err)
		}

		for _, want := range []string{"name: World", "extra:", "n:"} {
			if !strings.Contains(got, want) {
				t.Errorf("dump yaml missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		got, err := run(t, "", "dump", "json", "-d", base)
		if err != nil {
			t.Fatal(err)
		}

		if !strings.Contains(got, `"name"`) || !strings.Contains(got, `"World"`) {
			t.Errorf("dump json = %q", got)
		}
	})
}

func TestDataFlags_LoadOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "x: a\ny: a\n")
	b := writeFile(t, dir, "b.toml", "y = \"b\"\nz = \"b\"\n")

	f := DataFlags{Data: []string{a, b}, Set: []string{`z="set"`}}

	m, err := f.load(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	for key, want := range map[string]string{"x": "a", "y": "b", "z": "set"} {
		if v, ok := m.Lookup(key); !ok || v.String() != want {
			t.Errorf("%s = %v, want %q", key, v, want)
		}
	}

	if got := f.paths(t.Context()); len(got) != 2 {
		t.Errorf("paths() = %v", got)
	}
}
