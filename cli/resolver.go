package cli

import (
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmpl/log"
)

// resolve is a [kong.ConfigurationLoader] for YAML config files.
//
// Nested mappings are flattened by joining keys with "-", so both of these
// set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Flags of a subcommand may be set under the command name:
//
//	render:
//	  strict-defined: true
//	  data: [site.yaml]
//
// Underscores may be used in place of hyphens. Command-line flags override
// config file values. A config file that cannot be parsed is ignored with a
// warning.
func resolve(r io.Reader) (kong.Resolver, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return config{}, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		log.Warn("ignoring invalid configuration", slog.String("error", err.Error()))

		return config{}, nil
	}

	cfg := config{}
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (r config) flatten(prefix string, doc map[string]any) {
	for k, v := range doc {
		key := strings.ReplaceAll(prefix+k, "_", "-")

		if sub, ok := v.(map[string]any); ok {
			r.flatten(key+"-", sub)

			continue
		}

		r[key] = scalar(v)
	}
}

// scalar formats numbers as strings for kong's mappers.
func scalar(v any) any {
	switch x := v.(type) {
	case uint64:
		return strconv.FormatUint(x, 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = scalar(e)
		}

		return out
	default:
		return v
	}
}

// Validate implements [kong.Resolver]. Keys that name no flag are reported
// but do not fail parsing.
func (r config) Validate(app *kong.Application) error {
	known := flagKeys(app.Node, "")

	for key := range r {
		if !slices.Contains(known, key) {
			log.Warn("unknown configuration key", slog.String("key", key))
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if prefix := commandPrefix(parent); prefix != "" {
		if value, ok := r[prefix+flag.Name]; ok {
			return value, nil
		}
	}

	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil // not configured
}

// commandPrefix returns the config key prefix of the command owning the
// flags in path, such as "dump-json-".
func commandPrefix(path *kong.Path) string {
	if path == nil || path.Command == nil {
		return ""
	}

	return nodePrefix(path.Command)
}

func nodePrefix(n *kong.Node) string {
	var names []string

	for ; n != nil && n.Type != kong.ApplicationNode; n = n.Parent {
		names = append(names, n.Name)
	}

	if len(names) == 0 {
		return ""
	}

	slices.Reverse(names)

	return strings.Join(names, "-") + "-"
}

// flagKeys lists every config key that names a flag of n or its commands.
func flagKeys(n *kong.Node, prefix string) []string {
	var keys []string

	for _, f := range n.Flags {
		keys = append(keys, prefix+f.Name)
	}

	for _, c := range n.Children {
		keys = append(keys, flagKeys(c, nodePrefix(c))...)
	}

	return keys
}
