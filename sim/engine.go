// Package sim implements the deterministic, host-agnostic simulation core:
// a fixed-capacity agent store, a rebuilt-per-tick spatial index, and the
// per-tick passes (behavior, colony formation, alliance maintenance,
// species identification) that advance it. The package exposes data and a
// Tick/Configure/Spawn command surface; it owns no rendering, no
// persistence, and no wall-clock pacing.
package sim

import (
	"math/rand"
)

// Default schedule and threshold constants, mirroring config/defaults.yaml.
// New() uses these directly; NewWithParams lets a host override them.
const (
	defaultGridResolution     = 64
	defaultSpeciesInterval    = 60
	defaultSpeciesThreshold   = 0.05
	defaultColonyInterval     = 30
	defaultColonyDensity      = 15
	defaultColonyRadius       = 50
	defaultColonyDenseActive  = 2000
	defaultColonyDenseDensity = 5
	defaultColonyDenseRadius  = 80
	defaultAllianceInterval   = 60
	defaultAllianceMinMass    = 2
	defaultAllianceMaxDist    = 400
	defaultAllianceGeneDelta  = 0.3
	defaultFusionMassThresh   = 100
	defaultFusionSynergy      = 1.1
	defaultFusionEnergy       = 5000
	defaultAnalyticsDepth     = 256
	defaultEventQueueCap      = 4096
	defaultPerfWindow         = 120
	defaultGenerationTicks    = 500
)

// Params configures an Engine beyond the bare (worldSize, capacity) pair
// New() accepts. Every field has a zero-value-safe default applied by
// NewWithParams, so a host only needs to set the fields it cares about.
type Params struct {
	WorldSize  float32
	Capacity   int32
	Seed       int64
	GridResolution int

	SpeciesIntervalTicks int64
	SpeciesThreshold     float32

	ColonyIntervalTicks     int64
	ColonyDensityThreshold  int
	ColonySearchRadius      float32
	ColonyDenseActiveThresh int
	ColonyDenseDensity      int
	ColonyDenseRadius       float32

	AllianceIntervalTicks int64
	AllianceMinMass       float32
	AllianceMaxDistance   float32
	AllianceGeneDelta     float32
	FusionMassThreshold   float32
	FusionSynergy         float32
	FusionEnergy          float32

	AnalyticsDepth   int
	EventQueueCap    int
	PerfWindow       int
	GenerationTicks  int64
}

// Options carries the optional, bounded tunables Configure accepts
// (spec.md §6). A nil field means "leave unchanged."
type Options struct {
	MutationRate  *float32
	FoodAbundance *float32
	Friction      *float32
	SolarConstant *float32
}

// Engine is the simulation core. All mutation happens through Spawn,
// Configure and Tick; all observation happens through the read accessors,
// Nearest and Telemetry.
type Engine struct {
	store   *Store
	env     *Environment
	grid    *Grid
	species *SpeciesTracker
	analytics *Analytics
	events  *eventQueue
	perf    *PerfTracker
	rng     *rand.Rand

	worldSize float32
	tick      int64

	mutationRate  float32
	foodAbundance float32
	solarConstant float32

	speciesIntervalTicks int64

	colonyIntervalTicks     int64
	colonyDensityThreshold  int
	colonySearchRadius      float32
	colonyDenseActiveThresh int
	colonyDenseDensity      int
	colonyDenseRadius       float32

	allianceIntervalTicks int64
	allianceMinMass       float32
	allianceMaxDistance   float32
	allianceGeneDelta     float32
	fusionMassThreshold   float32
	fusionSynergy         float32
	fusionEnergy          float32

	cumulativeBirths int64
	cumulativeDeaths int64
	frameDeaths      int32

	generationTicks int64

	extinctionEmitted bool

	nextAllianceID int32

	// Scratch buffers reused across passes to avoid per-pass allocation.
	colonyVisited   []bool
	colonyMembers   []int32
	allianceVisited []bool
	alliancePartners []int32
}

// New creates an Engine with the default schedule and thresholds
// (spec.md §6: new(world_size, capacity) -> Engine).
func New(worldSize float32, capacity int32) *Engine {
	return NewWithParams(Params{WorldSize: worldSize, Capacity: capacity})
}

// NewWithParams creates an Engine with every schedule and threshold value
// set explicitly, falling back to the package defaults for any zero field.
// Hosts that load config/config.go's Config thread its values in through
// this constructor.
func NewWithParams(p Params) *Engine {
	if p.GridResolution == 0 {
		p.GridResolution = defaultGridResolution
	}
	if p.SpeciesIntervalTicks == 0 {
		p.SpeciesIntervalTicks = defaultSpeciesInterval
	}
	if p.SpeciesThreshold == 0 {
		p.SpeciesThreshold = defaultSpeciesThreshold
	}
	if p.ColonyIntervalTicks == 0 {
		p.ColonyIntervalTicks = defaultColonyInterval
	}
	if p.ColonyDensityThreshold == 0 {
		p.ColonyDensityThreshold = defaultColonyDensity
	}
	if p.ColonySearchRadius == 0 {
		p.ColonySearchRadius = defaultColonyRadius
	}
	if p.ColonyDenseActiveThresh == 0 {
		p.ColonyDenseActiveThresh = defaultColonyDenseActive
	}
	if p.ColonyDenseDensity == 0 {
		p.ColonyDenseDensity = defaultColonyDenseDensity
	}
	if p.ColonyDenseRadius == 0 {
		p.ColonyDenseRadius = defaultColonyDenseRadius
	}
	if p.AllianceIntervalTicks == 0 {
		p.AllianceIntervalTicks = defaultAllianceInterval
	}
	if p.AllianceMinMass == 0 {
		p.AllianceMinMass = defaultAllianceMinMass
	}
	if p.AllianceMaxDistance == 0 {
		p.AllianceMaxDistance = defaultAllianceMaxDist
	}
	if p.AllianceGeneDelta == 0 {
		p.AllianceGeneDelta = defaultAllianceGeneDelta
	}
	if p.FusionMassThreshold == 0 {
		p.FusionMassThreshold = defaultFusionMassThresh
	}
	if p.FusionSynergy == 0 {
		p.FusionSynergy = defaultFusionSynergy
	}
	if p.FusionEnergy == 0 {
		p.FusionEnergy = defaultFusionEnergy
	}
	if p.AnalyticsDepth == 0 {
		p.AnalyticsDepth = defaultAnalyticsDepth
	}
	if p.EventQueueCap == 0 {
		p.EventQueueCap = defaultEventQueueCap
	}
	if p.PerfWindow == 0 {
		p.PerfWindow = defaultPerfWindow
	}
	if p.GenerationTicks == 0 {
		p.GenerationTicks = defaultGenerationTicks
	}

	seed := p.Seed
	if seed == 0 {
		seed = 1
	}

	return &Engine{
		store:   NewStore(p.Capacity),
		env:     NewEnvironment(p.WorldSize, seed),
		grid:    NewGrid(p.WorldSize, p.GridResolution, p.Capacity),
		species: NewSpeciesTracker(p.SpeciesThreshold),
		analytics: NewAnalytics(p.AnalyticsDepth),
		events:  newEventQueue(p.EventQueueCap),
		perf:    NewPerfTracker(p.PerfWindow),
		rng:     rand.New(rand.NewSource(seed)),

		worldSize:       p.WorldSize,
		generationTicks: p.GenerationTicks,

		mutationRate:  1.0,
		foodAbundance: 1.0,
		solarConstant: 1.0,

		speciesIntervalTicks: p.SpeciesIntervalTicks,

		colonyIntervalTicks:     p.ColonyIntervalTicks,
		colonyDensityThreshold:  p.ColonyDensityThreshold,
		colonySearchRadius:      p.ColonySearchRadius,
		colonyDenseActiveThresh: p.ColonyDenseActiveThresh,
		colonyDenseDensity:      p.ColonyDenseDensity,
		colonyDenseRadius:       p.ColonyDenseRadius,

		allianceIntervalTicks: p.AllianceIntervalTicks,
		allianceMinMass:       p.AllianceMinMass,
		allianceMaxDistance:   p.AllianceMaxDistance,
		allianceGeneDelta:     p.AllianceGeneDelta,
		fusionMassThreshold:   p.FusionMassThreshold,
		fusionSynergy:         p.FusionSynergy,
		fusionEnergy:          p.FusionEnergy,
	}
}

// Seed reseeds the engine's random source. Intended for host CLI -seed
// flags and deterministic tests; not part of the steady-state tick loop.
func (e *Engine) Seed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// Configure applies the bounded runtime tunables spec.md §6 names,
// clamping each to its documented range.
func (e *Engine) Configure(o Options) {
	if o.MutationRate != nil {
		e.mutationRate = clamp32(*o.MutationRate, 0, 10)
	}
	if o.FoodAbundance != nil {
		e.foodAbundance = clamp32(*o.FoodAbundance, 0.1, 5)
	}
	if o.Friction != nil {
		f := clamp32(*o.Friction, 0.80, 1.00)
		e.store.SetFriction(f)
	}
	if o.SolarConstant != nil {
		e.solarConstant = clamp32(*o.SolarConstant, 0, 2)
	}
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Spawn inserts a new agent at (x,y) with the given genome, returning its
// index. Spec.md §4.1: rejects an all-zero genome or a full store.
func (e *Engine) Spawn(x, y float32, genome Genome) (int32, bool) {
	idx, ok := e.store.Spawn(x, y, genome)
	if !ok {
		return -1, false
	}
	e.cumulativeBirths++
	e.events.push(newBirthEvent(e.tick, idx, -1, e.store.archetypes[idx]))
	return idx, true
}

// Tick advances the simulation by dt seconds, running the full per-tick
// control flow: spatial rebuild, periodic species identification,
// per-agent behavior, integration and boundary handling, and the coarser
// colony/alliance passes on their own cadences.
func (e *Engine) Tick(dt float32) {
	if dt > 0.1 {
		dt = 0.1 // caller is responsible for this per spec; clamped defensively
	}
	if dt <= 0 {
		return
	}

	e.tick++
	e.frameDeaths = 0
	e.store.ClearRecentBirthFlags()

	sw := startStopwatch()
	e.grid.Rebuild(e.store)
	e.perf.Record("spatial", sw.elapsed())

	if (e.tick-1)%e.speciesIntervalTicks == 0 {
		sw = startStopwatch()
		e.runSpeciesPass()
		e.perf.Record("species", sw.elapsed())
	}

	sw = startStopwatch()
	params := behaviorParams{
		dt:            dt,
		foodAbundance: e.foodAbundance,
		solarConstant: e.solarConstant,
		mutationRate:  e.mutationRate,
	}
	capacity := e.store.Capacity()
	for i := int32(0); i < capacity; i++ {
		e.updateAgent(i, params)
	}
	e.perf.Record("behavior", sw.elapsed())

	sw = startStopwatch()
	e.store.Integrate(dt)
	for i := int32(0); i < capacity; i++ {
		if e.store.active[i] {
			e.applyBoundary(i)
		}
	}
	e.perf.Record("integrate", sw.elapsed())

	if e.tick%e.colonyIntervalTicks == 0 {
		sw = startStopwatch()
		e.runColonyPass()
		e.perf.Record("colony", sw.elapsed())
	}

	if e.tick%e.allianceIntervalTicks == 0 {
		sw = startStopwatch()
		e.runAlliancePass()
		e.perf.Record("alliance", sw.elapsed())
	}

	e.recordAnalytics()
	e.checkExtinction()
}

func (e *Engine) runSpeciesPass() {
	e.species.ResetCounts()
	capacity := e.store.Capacity()
	for i := int32(0); i < capacity; i++ {
		if !e.store.active[i] {
			continue
		}
		e.store.speciesIDs[i] = int32(e.species.Identify(e.store.genomes[i]))
	}
	e.species.Prune()
}

func (e *Engine) recordAnalytics() {
	perSpecies := make(map[uint32]uint32, e.species.Count())
	for _, sp := range e.species.All() {
		perSpecies[sp.ID] = sp.Population
	}
	e.analytics.Record(PopulationSnapshot{
		Tick:       e.tick,
		TotalAlive: e.store.ActiveCount(),
		PerSpecies: perSpecies,
	})
}

func (e *Engine) checkExtinction() {
	if !e.extinctionEmitted && e.store.ActiveCount() == 0 && e.tick > 1 {
		e.extinctionEmitted = true
		e.events.push(newMilestoneEvent(e.tick, "extinction"))
	}
}

// DrainEvents returns every event queued since the last drain and empties
// the queue.
func (e *Engine) DrainEvents() []Event {
	return e.events.drain()
}

// TickCount returns the current tick count.
func (e *Engine) TickCount() int64 { return e.tick }

// WorldSize returns the configured world side length.
func (e *Engine) WorldSize() float32 { return e.worldSize }

// Capacity returns the fixed agent slot count.
func (e *Engine) Capacity() int32 { return e.store.Capacity() }

// ActiveCount returns the number of currently live agents.
func (e *Engine) ActiveCount() int32 { return e.store.ActiveCount() }

// Read accessors: flat, index-aligned views over live and dead slots
// alike (spec.md §6 requires these stay O(1) and allocation-free; they
// return the store's backing slices directly, never a copy).
func (e *Engine) Positions() []Vec2       { return e.store.positions }
func (e *Engine) Velocities() []Vec2      { return e.store.velocities }
func (e *Engine) Energies() []float32     { return e.store.energies }
func (e *Engine) Masses() []float32       { return e.store.masses }
func (e *Engine) Archetypes() []Archetype { return e.store.archetypes }
func (e *Engine) AllianceIDs() []int32    { return e.store.allianceID }
func (e *Engine) SpeciesIDs() []int32     { return e.store.speciesIDs }
func (e *Engine) Cooldowns() []float32    { return e.store.cooldown }
func (e *Engine) Genomes() []Genome       { return e.store.genomes }
func (e *Engine) IsActive(i int32) bool   { return e.store.IsActive(i) }
