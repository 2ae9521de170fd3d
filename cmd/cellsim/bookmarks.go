package main

import (
	"log/slog"

	"github.com/quietloop/cellcore/sim"
)

// bookmarkType names a noteworthy shift in the population's trajectory.
// Grounded on the teacher's telemetry/bookmark.go BookmarkType enum, re-
// pointed at this core's own population signals (there are no predator/
// prey diet roles here, so the set is re-derived from alive count and
// species count trends instead).
type bookmarkType string

const (
	bookmarkPopulationCrash    bookmarkType = "population_crash"
	bookmarkPopulationRecovery bookmarkType = "population_recovery"
	bookmarkSpeciesBloom       bookmarkType = "species_bloom"
	bookmarkStableEcosystem    bookmarkType = "stable_ecosystem"
)

// bookmarkWatcher inspects each tick's Telemetry digest for these shifts
// and logs one slog line per detection, debounced so a single crossing
// doesn't re-fire on every subsequent tick.
type bookmarkWatcher struct {
	lastAlive    int32
	crashed      bool
	bloomed      bool
	stableTicks  int
	stableLogged bool
}

func newBookmarkWatcher() *bookmarkWatcher {
	return &bookmarkWatcher{}
}

func (w *bookmarkWatcher) observe(t sim.Telemetry) {
	if w.lastAlive > 0 {
		drop := float64(w.lastAlive-t.AliveCount) / float64(w.lastAlive)
		if !w.crashed && drop > 0.5 {
			w.crashed = true
			w.log(bookmarkPopulationCrash, t.Tick, "population dropped more than 50% in one tick")
		} else if w.crashed && t.AliveCount > w.lastAlive {
			w.crashed = false
			w.log(bookmarkPopulationRecovery, t.Tick, "population recovering after a crash")
		}
	}

	if t.SpeciesCount >= 8 && !w.bloomed {
		w.bloomed = true
		w.log(bookmarkSpeciesBloom, t.Tick, "species count crossed 8")
	} else if t.SpeciesCount < 8 {
		w.bloomed = false
	}

	if w.lastAlive > 0 {
		change := float64(t.AliveCount-w.lastAlive) / float64(w.lastAlive)
		if change > -0.05 && change < 0.05 {
			w.stableTicks++
		} else {
			w.stableTicks = 0
			w.stableLogged = false
		}
		if w.stableTicks > 300 && !w.stableLogged {
			w.stableLogged = true
			w.log(bookmarkStableEcosystem, t.Tick, "population has held steady for 300+ ticks")
		}
	}

	w.lastAlive = t.AliveCount
}

func (w *bookmarkWatcher) log(kind bookmarkType, tick int64, description string) {
	slog.Info("bookmark", "type", string(kind), "tick", tick, "description", description)
}
