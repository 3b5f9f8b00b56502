// Package data builds template contexts.
//
// A context is a [lang.Map] merged from any number of sources, applied in
// order with later sources winning:
//
//   - data files decoded by extension: YAML (.yaml, .yml), JSON (.json) and
//     TOML (.toml); "-" reads YAML from standard input
//   - the process environment, bound as the map "env"
//   - assignments of the form key.path=expr, where expr is evaluated with
//     [github.com/expr-lang/expr] against the context built so far and a
//     source that does not compile is taken as a literal string
//
// Relative data file names are resolved against the working directory and
// then each directory of the search path, composed from --include flags
// followed by the TMPL_PATH environment variable.
package data
