package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// stdinSource is the template or data name that reads standard input.
const stdinSource = "-"

type (
	contextKey struct{}
	streamsKey struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Streams are the standard input and output used by commands.
type Streams struct {
	In  io.Reader
	Out io.Writer
}

// WithStreams returns a new context.Context whose commands read and write s
// instead of the process's standard streams.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	return s
}

// openSource opens the named template, or standard input for "-".
func openSource(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == stdinSource {
		return io.NopCloser(streamsFrom(ctx).In), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, ErrOpenTemplate.Wrap(err).With(slog.String("template", name))
	}

	return f, nil
}

// sourceName is the template name reported in errors.
func sourceName(name string) string {
	if name == stdinSource {
		return "<stdin>"
	}

	return name
}
