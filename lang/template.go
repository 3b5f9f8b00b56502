package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/tmpl/log"
)

// DefaultMaxDepth is the default limit on nested sub-template invocations.
// Users may modify this before compiling to change the default.
var DefaultMaxDepth = 1000

// LoopScope selects where a for loop binds its variable and loop metadata.
type LoopScope uint8

const (
	// LoopScoped binds the loop variable and "loop" in a frame that exists
	// only for the iteration.
	LoopScoped LoopScope = iota

	// LoopLegacy binds them in the enclosing context, where they remain
	// after the loop completes.
	LoopLegacy
)

// String returns a string representation of the loop scope.
func (s LoopScope) String() string {
	if s == LoopLegacy {
		return "legacy"
	}

	return "scoped"
}

// ParseLoopScope parses "scoped" or "legacy". Any other input yields
// [LoopScoped].
func ParseLoopScope(s string) LoopScope {
	if strings.EqualFold(strings.TrimSpace(s), "legacy") {
		return LoopLegacy
	}

	return LoopScoped
}

// optionsKey holds the options that affect a compiled template.
// Its fields are hashed into the compile cache key.
type optionsKey struct {
	name          string
	params        []string
	maxDepth      int
	loopScope     LoopScope
	strictDefined bool
	strictBlocks  bool
}

// Template is a compiled template. It is immutable and may be rendered
// concurrently against independent contexts.
type Template struct {
	tree   *tree
	logger log.Logger // outside optionsKey, doesn't affect cache
	opts   optionsKey
}

// Option configures compilation or rendering behavior.
type Option func(*Template)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(t *Template) {
		t.logger = logger
	}
}

// WithName sets the template name reported in errors.
func WithName(name string) Option {
	return func(t *Template) {
		t.opts.name = name
	}
}

// WithParams declares formal parameter names bound, in order, to the
// positional arguments of [Template.Render].
func WithParams(names ...string) Option {
	return func(t *Template) {
		t.opts.params = append([]string(nil), names...)
	}
}

// WithMaxDepth limits nested sub-template invocations. Zero disables the
// limit.
func WithMaxDepth(depth int) Option {
	return func(t *Template) {
		t.opts.maxDepth = depth
	}
}

// WithLoopScope selects where for loops bind their variables.
func WithLoopScope(s LoopScope) Option {
	return func(t *Template) {
		t.opts.loopScope = s
	}
}

// WithStrictDefined makes defined(x) report whether x resolves. By default
// defined(x) is always true.
func WithStrictDefined(strict bool) Option {
	return func(t *Template) {
		t.opts.strictDefined = strict
	}
}

// WithStrictBlocks makes an unterminated block a lex error. By default its
// opening brace is emitted as literal text.
func WithStrictBlocks(strict bool) Option {
	return func(t *Template) {
		t.opts.strictBlocks = strict
	}
}

// applyDefaults sets default option values on a Template.
func applyDefaults(t *Template) {
	t.opts.maxDepth = DefaultMaxDepth
}

// applyOptions applies functional options to a Template.
func applyOptions(t *Template, opts ...Option) {
	for _, opt := range opts {
		opt(t)
	}
}

func newTemplate(opts ...Option) *Template {
	t := new(Template)

	applyDefaults(t)
	applyOptions(t, opts...)

	return t
}

// Compile parses src into a [Template].
func Compile(ctx context.Context, src string, opts ...Option) (*Template, error) {
	t := newTemplate(opts...)

	t.logger.TraceContext(
		ctx,
		"compile start",
		slog.String("name", t.opts.name),
		slog.Int("source_bytes", len(src)),
		slog.String("source_hash", sourceHash(src)),
	)

	tr, err := parse(src, t.opts.strictBlocks)
	if err != nil {
		err := WrapError(err).Named(t.opts.name)

		t.logger.TraceContext(ctx, "compile failed", slog.Any("error", err))

		return nil, err
	}

	t.tree = tr

	t.logger.TraceContext(
		ctx,
		"compile complete",
		slog.String("name", t.opts.name),
		slog.Int("node_count", len(tr.nodes)),
	)

	return t, nil
}

// MustCompile is like [Compile] but panics on error.
func MustCompile(ctx context.Context, src string, opts ...Option) *Template {
	t, err := Compile(ctx, src, opts...)
	if err != nil {
		panic(err)
	}

	return t
}

// NewSubTemplate compiles src as a sub-template with the given formal
// parameters, ready to be stored in a context.
func NewSubTemplate(
	ctx context.Context,
	src string,
	params ...string,
) (*SubTemplate, error) {
	t, err := Compile(ctx, src, WithParams(params...))
	if err != nil {
		return nil, err
	}

	return t.SubTemplate(), nil
}

// Name returns the template name.
func (t *Template) Name() string { return t.opts.name }

// Params returns the formal parameter names of t.
func (t *Template) Params() []string {
	return append([]string(nil), t.opts.params...)
}

// Len returns the number of nodes in the compiled tree.
func (t *Template) Len() int { return len(t.tree.nodes) }

// SubTemplate returns t as a sub-template sharing its compiled tree.
func (t *Template) SubTemplate() *SubTemplate {
	return &SubTemplate{tree: t.tree, body: t.tree.root, params: t.opts.params}
}

// Render renders t against data and returns the output. Positional args
// are bound to the parameters declared with [WithParams].
//
// Definitions made by the template are stored into data.
// No partial output is returned on error.
func (t *Template) Render(
	ctx context.Context,
	data Map,
	args ...Value,
) (string, error) {
	var sb strings.Builder

	if err := t.RenderTo(ctx, &sb, data, args...); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// RenderTo renders t against data into w. On error, w may already have
// received part of the output.
func (t *Template) RenderTo(
	ctx context.Context,
	w io.Writer,
	data Map,
	args ...Value,
) error {
	if len(args) > len(t.opts.params) {
		return ErrArgCount.With(
			slog.Int("expected", len(t.opts.params)),
			slog.Int("found", len(args)),
		).Named(t.opts.name)
	}

	r := &renderer{
		ctx:    ctx,
		w:      w,
		logger: t.logger,
		scope:  newScope(data),
		opts:   t.opts,
	}

	if len(t.opts.params) > 0 {
		params := make(Map, len(args))
		for i, a := range args {
			params[t.opts.params[i]] = a
		}

		r.scope.push(frameParams, params)
	}

	start := time.Now()

	if err := r.renderNodes(t.tree, t.tree.root); err != nil {
		err := WrapError(err).Named(t.opts.name)

		t.logger.TraceContext(ctx, "render failed", slog.Any("error", err))

		return err
	}

	t.logger.TraceContext(
		ctx,
		"render complete",
		slog.String("name", t.opts.name),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}

// Render compiles src (through the compile cache) and renders it against
// data.
func Render(
	ctx context.Context,
	src string,
	data Map,
	opts ...Option,
) (string, error) {
	t, err := CompileCached(ctx, src, opts...)
	if err != nil {
		return "", err
	}

	return t.Render(ctx, data)
}

// RenderTo compiles src (through the compile cache) and renders it against
// data into w.
func RenderTo(
	ctx context.Context,
	w io.Writer,
	src string,
	data Map,
	opts ...Option,
) error {
	t, err := CompileCached(ctx, src, opts...)
	if err != nil {
		return err
	}

	return t.RenderTo(ctx, w, data)
}
