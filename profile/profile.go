package profile

import "slices"

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // one of Modes(); empty disables profiling
	Path  string // output directory
	Quiet bool   // suppress the profiler's own log lines
}

// Start begins profiling. The returned Stopper is always safe to call, even
// when profiling is disabled or Mode is unknown.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether mode can be profiled in this build.
func Enabled(mode string) bool {
	return slices.Contains(Modes(), mode)
}

type ignore struct{}

func (ignore) Stop() {}
