// Package cmd implements the tmpl subcommands: render, check, dump, init
// and repl.
package cmd

// Kong variable identifiers set by the root command.
var (
	// CacheIdentifier names the path of the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the path of the configuration file.
	ConfigIdentifier = "config"

	// VersionIdentifier names the module version printed by --version.
	VersionIdentifier = "version"
)
