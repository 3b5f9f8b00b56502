package data

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/mung"
	"github.com/klauspost/readahead"

	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
	"github.com/ardnew/tmpl/pkg"
)

// Stdin is the data file name that reads standard input.
const Stdin = "-"

// Loader resolves and decodes data files into a context.
type Loader struct {
	stdin   io.Reader
	logger  log.Logger
	include []string
	envPath string
}

// Option configures a [Loader].
type Option func(*Loader)

// WithInclude adds directories searched for relative data file names.
// They are searched before the directories of TMPL_PATH.
func WithInclude(dirs ...string) Option {
	return func(l *Loader) {
		l.include = append(l.include, dirs...)
	}
}

// WithSearchPath replaces the value read from TMPL_PATH.
func WithSearchPath(list string) Option {
	return func(l *Loader) {
		l.envPath = list
	}
}

// WithStdin sets the reader used for the file name "-".
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		l.stdin = r
	}
}

// WithLogger sets the logger for resolution diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New returns a Loader configured by opts.
func New(opts ...Option) *Loader {
	l := &Loader{
		stdin:   os.Stdin,
		envPath: os.Getenv(pkg.EnvPrefix() + "PATH"),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// SearchPath returns the directories searched for relative file names, in
// order and without duplicates.
func (l *Loader) SearchPath() []string {
	list := mung.Make(
		mung.WithSubjectItems(l.envPath),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(l.include...),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(list) {
		if dir = strings.TrimSpace(dir); dir != "" && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// Resolve returns the path of the data file name. Absolute names and names
// that exist relative to the working directory are returned as is;
// otherwise each search directory is tried in order.
func (l *Loader) Resolve(name string) (string, error) {
	if name == Stdin || filepath.IsAbs(name) || exists(name) {
		return name, nil
	}

	for _, dir := range l.SearchPath() {
		if p := filepath.Join(dir, name); exists(p) {
			return p, nil
		}
	}

	return "", ErrNotFound.With(slog.String("file", name))
}

func exists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// LoadFile resolves and decodes one data file.
func (l *Loader) LoadFile(ctx context.Context, name string) (lang.Map, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}

	if path == Stdin {
		return Decode(ctx, l.stdin, FormatYAML)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound.Wrap(err).With(slog.String("file", path))
		}

		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	m, err := Decode(ctx, ra, format)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("file", path))
	}

	l.logger.DebugContext(ctx, "data loaded",
		slog.String("file", path),
		slog.String("format", format.String()),
		slog.Int("keys", len(m)),
	)

	return m, nil
}

// Load decodes each named file and merges them in order into one context.
// A file named more than once, by any path, is loaded only once.
func (l *Loader) Load(ctx context.Context, names ...string) (lang.Map, error) {
	out := lang.Map{}

	var seen []os.FileInfo

	for _, name := range names {
		if name != Stdin {
			path, err := l.Resolve(name)
			if err != nil {
				return nil, err
			}

			if info, err := os.Stat(path); err == nil {
				if duplicate(seen, info) {
					l.logger.DebugContext(ctx, "data file skipped",
						slog.String("file", path),
						slog.String("reason", "duplicate"),
					)

					continue
				}

				seen = append(seen, info)
			}
		}

		m, err := l.LoadFile(ctx, name)
		if err != nil {
			return nil, err
		}

		out.Merge(m)
	}

	return out, nil
}

func duplicate(seen []os.FileInfo, info os.FileInfo) bool {
	for _, s := range seen {
		if os.SameFile(s, info) {
			return true
		}
	}

	return false
}
