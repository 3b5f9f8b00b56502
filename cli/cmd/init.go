package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmpl/log"
	"github.com/ardnew/tmpl/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	doc := configDoc(ktx, ktx.Model.Node)

	out, err := yaml.MarshalContext(ctx, doc, yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.WriteFile(confPath, out, 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
		slog.Int("keys", len(doc)),
	)

	return nil
}

// ignoredFlags are never written to the configuration file.
var ignoredFlags = []string{"help", "version", profile.Tag}

// ignoredCommands have no flags worth persisting.
var ignoredCommands = []string{"init"}

// configDoc returns the current values of the flags of n, with each
// subcommand's flags in a nested mapping under its name.
func configDoc(ktx *kong.Context, n *kong.Node) map[string]any {
	doc := map[string]any{}

	for _, flag := range n.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := flagValue(ktx.FlagValue(flag)); v != nil {
			doc[flag.Name] = v
		}
	}

	for _, c := range n.Children {
		if c.Hidden || slices.Contains(ignoredCommands, c.Name) {
			continue
		}

		if sub := configDoc(ktx, c); len(sub) > 0 {
			doc[c.Name] = sub
		}
	}

	return doc
}

// flagValue returns the YAML representation of a flag value, or nil if
// the flag is unset.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case bool, int, int64, uint, uint64, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	default:
		if s := fmt.Sprint(v); s != "" {
			return s
		}

		return nil
	}
}
