package data

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tmpl/lang"
)

// Format is the encoding of a data document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	default:
		return "yaml"
	}
}

// FormatOf selects a format from the extension of name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, ErrUnknownFormat.With(slog.String("file", name))
	}
}

// Decode reads one document of the given format from r. The document must
// be a mapping; an empty document yields an empty map.
func Decode(ctx context.Context, r io.Reader, format Format) (lang.Map, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err)
	}

	var doc map[string]any

	switch format {
	case FormatTOML:
		err = toml.Unmarshal(src, &doc)

	default:
		// JSON is a subset of YAML.
		var raw any

		if err = yaml.UnmarshalContext(ctx, src, &raw); err == nil && raw != nil {
			var ok bool
			if doc, ok = raw.(map[string]any); !ok {
				return nil, ErrNotMapping.With(slog.String("format", format.String()))
			}
		}
	}

	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("format", format.String()))
	}

	return lang.MapFromNative(doc)
}
