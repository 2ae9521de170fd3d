package main

import (
	"log/slog"

	"github.com/quietloop/cellcore/sim"
)

// logEvent renders one drained core event as a structured slog line.
// Birth/Death at full volume would flood the log at a healthy population
// size, so only the less frequent event kinds are logged by default.
func logEvent(ev sim.Event) {
	switch ev.Type {
	case sim.EventColony:
		slog.Info("colony formed", "tick", ev.Tick, "index", ev.Index, "mass", ev.Mass)
	case sim.EventAlliance:
		slog.Info("alliance formed", "tick", ev.Tick, "count", ev.Count)
	case sim.EventFusion:
		slog.Info("alliance fused", "tick", ev.Tick, "index", ev.Index, "mass", ev.Mass)
	case sim.EventAssimilation:
		slog.Info("assimilation", "tick", ev.Tick, "predator", ev.Index, "prey", ev.OtherIndex)
	case sim.EventMilestone:
		slog.Info("milestone", "tick", ev.Tick, "text", ev.Text)
	}
}
