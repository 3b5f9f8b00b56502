package cmd

import (
	"context"
	"log/slog"
)

// Dump prints a compiled template or the data context.
type Dump struct {
	AST  DumpAST  `cmd:"" help:"Print the node tree of a template."`
	JSON DumpJSON `cmd:"" help:"Print the data context as JSON."     name:"json"`
	YAML DumpYAML `cmd:"" help:"Print the data context as YAML."     name:"yaml"`
}

// DumpAST prints the node tree of a template with source lines.
type DumpAST struct {
	CompileFlags `embed:""`

	Template string `arg:"" default:"-" help:"Template file ('-' is stdin)." name:"template"`
}

// Run executes the dump ast command.
func (d *DumpAST) Run(ctx context.Context) error {
	t, err := d.compile(ctx, d.Template)
	if err != nil {
		return ErrDump.Wrap(err).With(slog.String("template", d.Template))
	}

	return t.Print(streamsFrom(ctx).Out)
}

// DumpJSON prints the merged data context as JSON.
type DumpJSON struct {
	DataFlags `embed:""`

	Indent int `default:"2" help:"Indent width (0 for compact output)." short:"i"`
}

// Run executes the dump json command.
func (d *DumpJSON) Run(ctx context.Context) error {
	m, err := d.load(ctx)
	if err != nil {
		return err
	}

	if err := m.FormatJSON(ctx, streamsFrom(ctx).Out, d.Indent); err != nil {
		return ErrDump.Wrap(err).With(slog.String("format", "json"))
	}

	return nil
}

// DumpYAML prints the merged data context as YAML.
type DumpYAML struct {
	DataFlags `embed:""`

	Indent int `default:"2" help:"Indent width (0 for flow style)." short:"i"`
}

// Run executes the dump yaml command.
func (d *DumpYAML) Run(ctx context.Context) error {
	m, err := d.load(ctx)
	if err != nil {
		return err
	}

	if err := m.FormatYAML(ctx, streamsFrom(ctx).Out, d.Indent); err != nil {
		return ErrDump.Wrap(err).With(slog.String("format", "yaml"))
	}

	return nil
}
