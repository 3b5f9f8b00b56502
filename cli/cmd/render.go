package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/tmpl/log"
)

// Render renders templates against a data context.
type Render struct {
	DataFlags    `embed:""`
	CompileFlags `embed:""`

	Output string `help:"Write output to FILE instead of stdout." placeholder:"FILE" short:"o" type:"path"`
	Watch  bool   `help:"Render again whenever a template or data file changes." short:"w"`

	Templates []string `arg:"" help:"Template files to render in order ('-' is stdin)." name:"template"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.Watch && (slices.Contains(r.Templates, stdinSource) ||
		slices.Contains(r.Data, stdinSource)) {
		return ErrWatch.With(slog.String("reason", "standard input cannot be watched"))
	}

	if err := r.render(ctx); err != nil {
		if !r.Watch {
			return err
		}

		log.ErrorContext(ctx, "render failed", slog.Any("error", err))
	}

	if !r.Watch {
		return nil
	}

	return r.watch(ctx)
}

// render loads the data context once and renders every template into the
// output in order.
func (r *Render) render(ctx context.Context) (err error) {
	m, err := r.load(ctx)
	if err != nil {
		return err
	}

	out, closeOut, err := r.output(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := closeOut(); err == nil && cerr != nil {
			err = ErrOpenOutput.Wrap(cerr).With(slog.String("file", r.Output))
		}
	}()

	w := bufio.NewWriter(out)

	for _, name := range r.Templates {
		t, err := r.compile(ctx, name)
		if err != nil {
			_ = w.Flush()

			return ErrRender.Wrap(err).With(slog.String("template", name))
		}

		if err := t.RenderTo(ctx, w, m); err != nil {
			_ = w.Flush()

			return ErrRender.Wrap(err).With(slog.String("template", name))
		}

		log.DebugContext(ctx, "rendered",
			slog.String("template", name),
			slog.Int("nodes", t.Len()),
		)
	}

	return w.Flush()
}

// output opens the destination: the command's standard output unless a
// file is named.
func (r *Render) output(ctx context.Context) (io.Writer, func() error, error) {
	if r.Output == "" || r.Output == stdinSource {
		return streamsFrom(ctx).Out, func() error { return nil }, nil
	}

	f, err := os.Create(r.Output)
	if err != nil {
		return nil, nil, ErrOpenOutput.Wrap(err).With(slog.String("file", r.Output))
	}

	return f, f.Close, nil
}
