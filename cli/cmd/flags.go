package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tmpl/data"
	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// envKey is the context key holding the process environment with --env.
const envKey = "env"

// DataFlags build the data context a template renders against.
type DataFlags struct {
	Data      []string `help:"Data file merged into the context in order (YAML, JSON or TOML; '-' is stdin)." placeholder:"FILE"     short:"d"`
	Set       []string `help:"Assign key.path=expr after loading data files. Numeric values are evaluated (1.10 becomes 1.1)." placeholder:"KEY=EXPR" short:"s"`
	SetString []string `help:"Assign key.path=text literally, after --set."                                                    placeholder:"KEY=TEXT" short:"S"`
	Include   []string `help:"Directory searched for relative data files, before TMPL_PATH."                   placeholder:"DIR"      short:"I" type:"path"`
	Env       bool     `help:"Bind the process environment as map 'env'."`
}

// loader returns a data loader for the flags.
func (f *DataFlags) loader(ctx context.Context) *data.Loader {
	return data.New(
		data.WithInclude(f.Include...),
		data.WithStdin(streamsFrom(ctx).In),
		data.WithLogger(log.Default()),
	)
}

// load builds the data context: files in order, then the environment,
// then each --set and each --set-string in order.
func (f *DataFlags) load(ctx context.Context) (lang.Map, error) {
	m, err := f.loader(ctx).Load(ctx, f.Data...)
	if err != nil {
		return nil, ErrLoadData.Wrap(err)
	}

	if f.Env {
		m.Set(envKey, lang.MapValue(data.Environ(nil)))
	}

	for _, a := range f.Set {
		if err := data.Assign(m, a); err != nil {
			return nil, ErrLoadData.Wrap(err).With(slog.String("set", a))
		}
	}

	for _, a := range f.SetString {
		if err := data.AssignString(m, a); err != nil {
			return nil, ErrLoadData.Wrap(err).With(slog.String("set-string", a))
		}
	}

	log.DebugContext(ctx, "data context loaded",
		slog.Int("files", len(f.Data)),
		slog.Int("assignments", len(f.Set)+len(f.SetString)),
		slog.Int("keys", len(m)),
	)

	return m, nil
}

// paths returns the resolved paths of the data files, for watching.
func (f *DataFlags) paths(ctx context.Context) []string {
	l := f.loader(ctx)

	var out []string

	for _, name := range f.Data {
		if name == stdinSource {
			continue
		}

		if p, err := l.Resolve(name); err == nil {
			out = append(out, p)
		}
	}

	return out
}

// CompileFlags select template compilation and rendering behavior.
type CompileFlags struct {
	LoopScope     string `default:"scoped" enum:"scoped,legacy" help:"Where for loops bind their variable and 'loop' (${enum})."`
	MaxDepth      int    `default:"1000"                        help:"Maximum nested sub-template invocations (0 is unbounded)."`
	StrictDefined bool   `help:"Make defined(x) report whether x resolves."`
	StrictBlocks  bool   `help:"Report unterminated blocks instead of emitting '{' as text."`
}

func (f *CompileFlags) options(name string) []lang.Option {
	return []lang.Option{
		lang.WithName(name),
		lang.WithLogger(log.Default()),
		lang.WithLoopScope(lang.ParseLoopScope(f.LoopScope)),
		lang.WithMaxDepth(f.MaxDepth),
		lang.WithStrictDefined(f.StrictDefined),
		lang.WithStrictBlocks(f.StrictBlocks),
	}
}

// compile reads and compiles the named template.
func (f *CompileFlags) compile(ctx context.Context, name string) (*lang.Template, error) {
	r, err := openSource(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return lang.CompileReader(ctx, r, f.options(sourceName(name))...)
}
