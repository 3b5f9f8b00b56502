package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Check compiles templates without rendering them.
type Check struct {
	CompileFlags `embed:""`

	Keys bool `help:"List the key paths each template references." short:"k"`

	Templates []string `arg:"" help:"Template files to check ('-' is stdin)." name:"template"`
}

// Run executes the check command. Every template is checked even after a
// failure; the command fails if any template did.
func (c *Check) Run(ctx context.Context) error {
	out := streamsFrom(ctx).Out

	var failed []string

	for _, name := range c.Templates {
		t, err := c.compile(ctx, name)
		if err != nil {
			failed = append(failed, name)

			fmt.Fprintln(out, err)

			continue
		}

		fmt.Fprintf(out, "%s: ok\n", sourceName(name))

		if c.Keys {
			for _, k := range t.Keys() {
				fmt.Fprintf(out, "\t%s\n", k)
			}
		}
	}

	if len(failed) > 0 {
		return ErrCheck.With(
			slog.Int("failed", len(failed)),
			slog.String("templates", strings.Join(failed, ",")),
		)
	}

	return nil
}
