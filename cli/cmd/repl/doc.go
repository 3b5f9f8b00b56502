// Package repl implements an interactive template session.
//
// Each input line is compiled and rendered against a context that persists
// for the session, so definitions made by one line are visible to the next.
// A line without a block is an expression and is rendered as {$ line }.
// Lines beginning with ":" are commands (:help lists them).
//
// Tab completion is fuzzy over the context's key paths, the keywords and
// the pseudo-functions. Inside a call the signature of the sub-template or
// pseudo-function is shown with the current argument highlighted.
package repl
