// cellsim runs the simulation core headlessly: no rendering, no window,
// just Tick() in a loop with structured logging and optional CSV export.
// Grounded on the teacher's main.go, trimmed to the headless branch since
// rendering is out of scope for this core.
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/quietloop/cellcore/config"
	"github.com/quietloop/cellcore/sim"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use embedded defaults)")
	outputDir := flag.String("output-dir", "", "Directory for telemetry.csv and a config snapshot (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	logEveryTicks := flag.Int("log-every", 500, "Emit a structured tick digest every N ticks")
	logStats := flag.Bool("log-stats", false, "Also emit a free-text per-phase perf digest alongside each tick digest")
	initialPopulation := flag.Int("initial-population", 200, "Agents spawned at random positions before tick 1")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	engine := sim.NewWithParams(sim.Params{
		WorldSize: cfg.Derived.WorldSize32,
		Capacity:  int32(cfg.World.Capacity),
		Seed:      rngSeed,

		GridResolution: cfg.Spatial.Resolution,

		SpeciesIntervalTicks: int64(cfg.Species.IntervalTicks),
		SpeciesThreshold:     float32(cfg.Species.Threshold),

		ColonyIntervalTicks:     int64(cfg.Colony.IntervalTicks),
		ColonyDensityThreshold:  cfg.Colony.DensityThreshold,
		ColonySearchRadius:      float32(cfg.Colony.SearchRadius),
		ColonyDenseActiveThresh: cfg.Colony.DenseActiveThreshold,
		ColonyDenseDensity:      cfg.Colony.DenseDensityThreshold,
		ColonyDenseRadius:       float32(cfg.Colony.DenseSearchRadius),

		AllianceIntervalTicks: int64(cfg.Alliance.IntervalTicks),
		AllianceMinMass:       float32(cfg.Alliance.MinMass),
		AllianceMaxDistance:   float32(cfg.Alliance.MaxDistance),
		AllianceGeneDelta:     float32(cfg.Alliance.GeneDeltaThreshold),
		FusionMassThreshold:   float32(cfg.Alliance.FusionMassThreshold),
		FusionSynergy:         float32(cfg.Alliance.FusionSynergy),
		FusionEnergy:          float32(cfg.Alliance.FusionEnergy),

		AnalyticsDepth:  cfg.Telemetry.RingBufferDepth,
		GenerationTicks: int64(cfg.Telemetry.GenerationTicks),
	})

	mutationRate := float32(cfg.Physics.MutationRate)
	foodAbundance := float32(cfg.Physics.FoodAbundance)
	friction := float32(cfg.Physics.Friction)
	solarConstant := float32(cfg.Physics.SolarConstant)
	engine.Configure(sim.Options{
		MutationRate:  &mutationRate,
		FoodAbundance: &foodAbundance,
		Friction:      &friction,
		SolarConstant: &solarConstant,
	})

	seedPopulation(engine, rngSeed, *initialPopulation, cfg.Derived.WorldSize32)

	var out *outputManager
	if *outputDir != "" {
		out, err = newOutputManager(*outputDir)
		if err != nil {
			slog.Error("failed to open output directory", "error", err)
			os.Exit(1)
		}
		defer out.Close()
		if err := out.writeConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	watcher := newBookmarkWatcher()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"world_size", cfg.World.Size,
		"capacity", cfg.World.Capacity,
		"max_ticks", *maxTicks,
	)

	const dt = 1.0 / 60.0
	for {
		engine.Tick(dt)
		tick := engine.TickCount()

		for _, ev := range engine.DrainEvents() {
			logEvent(ev)
		}

		tel := engine.Telemetry()
		watcher.observe(tel)

		if out != nil {
			if err := out.writeTelemetry(tel); err != nil {
				slog.Error("failed to write telemetry row", "error", err)
			}
		}

		if *logEveryTicks > 0 && tick%int64(*logEveryTicks) == 0 {
			slog.Info("tick digest",
				"tick", tel.Tick,
				"alive", tel.AliveCount,
				"births", tel.CumulativeBirths,
				"deaths", tel.CumulativeDeaths,
				"species", tel.SpeciesCount,
				"generation", tel.Generation,
			)
			if *logStats {
				engine.LogPerfStats()
			}
		}

		if *maxTicks > 0 && int(tick) >= *maxTicks {
			slog.Info("max ticks reached", "tick", tick)
			return
		}
		if tel.AliveCount == 0 {
			slog.Info("population extinct, stopping", "tick", tick)
			return
		}
	}
}

// seedPopulation spawns count agents with random genomes at random
// positions, mirroring the teacher's factory-driven initial population.
func seedPopulation(e *sim.Engine, seed int64, count int, worldSize float32) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < count; i++ {
		x := rng.Float32() * worldSize
		y := rng.Float32() * worldSize
		var genome sim.Genome
		for g := range genome {
			genome[g] = rng.Float32()
		}
		e.Spawn(x, y, genome)
	}
}
