package sim

import (
	"sort"
	"time"
)

// PerfTracker records a rolling average duration per named tick phase.
// spec.md doesn't mention performance instrumentation; this mirrors the
// teacher's telemetry/perf.go named-stage average tracker, used here to
// give a future two-phase-parallel split (the optional design freedom in
// spec.md §5) a measurement baseline.
type PerfTracker struct {
	samples map[string][]time.Duration
	window  int
}

// NewPerfTracker creates a tracker that keeps the last window samples per
// named phase.
func NewPerfTracker(window int) *PerfTracker {
	return &PerfTracker{samples: make(map[string][]time.Duration), window: window}
}

// Record appends a duration sample for the named phase, dropping the
// oldest sample once the window is full.
func (p *PerfTracker) Record(name string, d time.Duration) {
	s := p.samples[name]
	s = append(s, d)
	if len(s) > p.window {
		s = s[len(s)-p.window:]
	}
	p.samples[name] = s
}

// Avg returns the rolling average duration for name.
func (p *PerfTracker) Avg(name string) time.Duration {
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Total returns the sum of every phase's rolling average — an estimate of
// total per-tick cost.
func (p *PerfTracker) Total() time.Duration {
	var total time.Duration
	for name := range p.samples {
		total += p.Avg(name)
	}
	return total
}

// SortedNames returns phase names sorted by descending average duration.
func (p *PerfTracker) SortedNames() []string {
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.Avg(names[i]) > p.Avg(names[j])
	})
	return names
}

// stopwatch is a tiny helper for timing a tick phase without allocating.
type stopwatch struct {
	start time.Time
}

func startStopwatch() stopwatch {
	return stopwatch{start: time.Now()}
}

func (sw stopwatch) elapsed() time.Duration {
	return time.Since(sw.start)
}
