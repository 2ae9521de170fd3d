package sim

// Snapshot is a point-in-time, copied view of a single agent, safe for a
// host to hold onto after the tick that produced it (unlike the flat read
// accessors, which alias the store and go stale on the next Remove).
type Snapshot struct {
	Index      int32
	Position   Vec2
	Velocity   Vec2
	Energy     float32
	Mass       float32
	Archetype  Archetype
	SpeciesID  int32
	AllianceID int32
	Generation uint32
	Genome     Genome
}

func (e *Engine) snapshotOf(i int32) Snapshot {
	s := e.store
	return Snapshot{
		Index:      i,
		Position:   s.positions[i],
		Velocity:   s.velocities[i],
		Energy:     s.energies[i],
		Mass:       s.masses[i],
		Archetype:  s.archetypes[i],
		SpeciesID:  s.speciesIDs[i],
		AllianceID: s.allianceID[i],
		Generation: s.generation[i],
		Genome:     s.genomes[i],
	}
}

// Nearest finds the live agent closest to (x,y) within maxRadius. If
// followHint names a still-live agent within maxRadius of (x,y), it is
// returned as-is rather than re-picking the nearest — this keeps a host's
// camera or inspector panel locked onto the same agent across ticks
// instead of jittering between near-equidistant candidates. Pass -1 for
// followHint to always pick freshly.
//
// Grounded on the teacher's game/selection.go findOrganismAtMouse, with
// the raylib mouse-position read replaced by explicit (x,y) arguments.
func (e *Engine) Nearest(x, y, maxRadius float32, followHint int32) (Snapshot, bool) {
	maxDistSq := maxRadius * maxRadius

	if followHint >= 0 && e.store.IsActive(followHint) {
		pos := e.store.positions[followHint]
		dx, dy := pos.X-x, pos.Y-y
		if dx*dx+dy*dy <= maxDistSq {
			return e.snapshotOf(followHint), true
		}
	}

	best := int32(-1)
	bestDistSq := maxDistSq
	capacity := e.store.Capacity()
	for i := int32(0); i < capacity; i++ {
		if !e.store.active[i] {
			continue
		}
		pos := e.store.positions[i]
		dx, dy := pos.X-x, pos.Y-y
		d := dx*dx + dy*dy
		if d <= bestDistSq {
			bestDistSq = d
			best = i
		}
	}
	if best == -1 {
		return Snapshot{}, false
	}
	return e.snapshotOf(best), true
}

// Telemetry is the per-tick digest a host pulls for dashboards or CSV
// export: alive/cumulative counts, a coarse generation counter, and the
// population's gene and archetype distributions.
type Telemetry struct {
	Tick               int64
	AliveCount         int32
	CumulativeBirths   int64
	CumulativeDeaths   int64
	FrameDeaths        int32
	Generation         int64
	SpeciesCount       int
	GeneHistogram      [GeneCount]int32 // count of agents whose dominant gene is index k
	ArchetypeHistogram [5]int32         // count of agents per Archetype value
	Population         PopulationStats
}

// Telemetry assembles the current digest. Allocation-free aside from the
// Analytics.Summarize sort, which runs over the bounded analytics
// window rather than the live population.
func (e *Engine) Telemetry() Telemetry {
	var geneHist [GeneCount]int32
	var archHist [5]int32

	capacity := e.store.Capacity()
	for i := int32(0); i < capacity; i++ {
		if !e.store.active[i] {
			continue
		}
		g := e.store.genomes[i]
		dom := 0
		for k := 1; k < GeneCount; k++ {
			if g[k] > g[dom] {
				dom = k
			}
		}
		geneHist[dom]++
		archHist[e.store.archetypes[i]]++
	}

	return Telemetry{
		Tick:               e.tick,
		AliveCount:         e.store.ActiveCount(),
		CumulativeBirths:   e.cumulativeBirths,
		CumulativeDeaths:   e.cumulativeDeaths,
		FrameDeaths:        e.frameDeaths,
		Generation:         e.tick / e.generationTicks,
		SpeciesCount:       e.species.Count(),
		GeneHistogram:      geneHist,
		ArchetypeHistogram: archHist,
		Population:         e.analytics.Summarize(),
	}
}
