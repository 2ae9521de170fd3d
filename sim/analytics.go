package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// PopulationSnapshot is one ring-buffer entry: population counts per
// species id, taken at a given tick.
type PopulationSnapshot struct {
	Tick       int64
	TotalAlive int32
	PerSpecies map[uint32]uint32
}

// Analytics is a fixed-depth ring buffer of PopulationSnapshot, the
// component spec.md's overview table names "Ring buffer of
// population-by-species snapshots."
type Analytics struct {
	buf   []PopulationSnapshot
	depth int
	next  int
	size  int
}

// NewAnalytics creates a ring buffer retaining up to depth snapshots.
func NewAnalytics(depth int) *Analytics {
	return &Analytics{buf: make([]PopulationSnapshot, depth), depth: depth}
}

// Record appends a snapshot, overwriting the oldest entry once full.
func (a *Analytics) Record(snap PopulationSnapshot) {
	a.buf[a.next] = snap
	a.next = (a.next + 1) % a.depth
	if a.size < a.depth {
		a.size++
	}
}

// Snapshots returns the retained snapshots in chronological order.
func (a *Analytics) Snapshots() []PopulationSnapshot {
	out := make([]PopulationSnapshot, a.size)
	start := (a.next - a.size + a.depth) % a.depth
	for i := 0; i < a.size; i++ {
		out[i] = a.buf[(start+i)%a.depth]
	}
	return out
}

// PopulationStats summarizes the mean and percentiles of total population
// across the retained window, using gonum/stat in place of a hand-rolled
// percentile helper (grounded on the teacher's telemetry/stats.go, which
// computed these by hand before gonum was a direct dependency here).
type PopulationStats struct {
	Mean float64
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes PopulationStats over the currently retained window.
func (a *Analytics) Summarize() PopulationStats {
	if a.size == 0 {
		return PopulationStats{}
	}
	values := make([]float64, 0, a.size)
	for _, snap := range a.Snapshots() {
		values = append(values, float64(snap.TotalAlive))
	}
	sort.Float64s(values)

	return PopulationStats{
		Mean: stat.Mean(values, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, values, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, values, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, values, nil),
	}
}
