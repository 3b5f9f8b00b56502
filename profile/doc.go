// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	tmpl --pprof-mode cpu render page.tmpl
//	go tool pprof -http=: ~/.cache/tmpl/pprof/cpu.pprof
//
// Without the tag [Modes] is empty and [Profiler.Start] is a no-op.
package profile

// Tag is the build tag that enables profiling.
const Tag = "pprof"
