// Package cli contains the command line interface for tmpl.
//
// # Usage
//
//	tmpl [flags] <command> [args]
//
// The default command is render, so a bare template name renders it:
//
//	tmpl -d site.yaml page.tmpl
//
// # Configuration
//
// Flags may be set in a YAML file, by default config.yaml in the user
// configuration directory (for example ~/.config/tmpl/config.yaml).
// Nested mappings are flattened with "-", and subcommand flags may be
// grouped under the command name:
//
//	log:
//	  level: info
//	render:
//	  strict-defined: true
//	  include: [~/share/tmpl]
//
// "tmpl init" writes the current effective flags to that file.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: record format (text, json)
//   - --log-time-layout: timestamp layout (RFC3339, kitchen, none, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorize text records
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
// Then --pprof-mode selects a profile (cpu, heap, allocs, ...) and
// --pprof-dir its output directory.
package cli
