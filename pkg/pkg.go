// Package pkg holds the identity of the tmpl module and the per-user
// directories it reads and writes.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It also names the configuration and cache
	// directories and prefixes environment variables.
	Name = "tmpl"

	// Description is the one-line summary shown in help output.
	Description = "Render text templates against structured data"
)

// EnvPrefix returns the prefix of environment variables read by the
// command, such as TMPL_PATH.
func EnvPrefix() string { return strings.ToUpper(Name) + "_" }
