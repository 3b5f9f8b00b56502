// Package log wraps [log/slog] with a concurrency-safe [Logger] value,
// functional options, and a trace level below debug.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithPretty(true))
//	logger.Info("rendered", slog.String("template", name))
//
// A zero Logger discards everything. [Logger.Wrap] derives a logger with
// different options and [Logger.With] one with extra attributes; neither
// modifies the receiver.
//
// Records are encoded as [FormatText] or [FormatJSON]. Pretty text output
// styles keys, values and levels for a terminal. Values implementing
// [slog.LogValuer] are resolved, so structured errors expand into their
// attributes.
//
// The package-level functions log through a default logger that writes to
// standard error; see [Config] and [SetDefault].
package log
