package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/tmpl/log"
)

// watchDelay coalesces the burst of events an editor produces on save.
const watchDelay = 100 * time.Millisecond

// watch renders again after each change to a template or data file until
// ctx is done. Render errors are logged and do not stop the loop.
func (r *Render) watch(ctx context.Context) error {
	files := r.watched(ctx)
	if len(files) == 0 {
		return ErrWatch.With(slog.String("reason", "no files to watch"))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	// Directories are watched rather than files so that editors which
	// replace a file on save are still seen.
	var dirs []string

	for _, f := range files {
		if dir := filepath.Dir(f); !slices.Contains(dirs, dir) {
			if err := w.Add(dir); err != nil {
				return ErrWatch.Wrap(err).With(slog.String("dir", dir))
			}

			dirs = append(dirs, dir)
		}
	}

	log.InfoContext(ctx, "watching for changes", slog.Any("files", files))

	fire := make(chan struct{}, 1)

	timer := time.AfterFunc(time.Hour, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !slices.Contains(files, filepath.Clean(event.Name)) ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.TraceContext(ctx, "file event",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			timer.Reset(watchDelay)

		case <-fire:
			log.InfoContext(ctx, "change detected, rendering")

			if err := r.render(ctx); err != nil {
				log.ErrorContext(ctx, "render failed", slog.Any("error", err))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.String("error", err.Error()))
		}
	}
}

// watched returns the absolute paths of the template and data files.
func (r *Render) watched(ctx context.Context) []string {
	var out []string

	for _, name := range append(slices.Clone(r.Templates), r.paths(ctx)...) {
		if name == stdinSource {
			continue
		}

		if abs, err := filepath.Abs(name); err == nil && !slices.Contains(out, abs) {
			out = append(out, abs)
		}
	}

	return out
}
