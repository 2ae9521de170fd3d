package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/quietloop/cellcore/config"
	"github.com/quietloop/cellcore/sim"
)

// targetPopulation is the steady-state alive count fitness evaluation
// tries to converge runs toward.
const targetPopulation = 400

// warmupTicks skips the initial transient before a run's population
// reading starts counting toward fitness, mirroring the teacher's
// five-second warmup before its extinction checks.
const warmupTicks = 5 * 60

// measureTicks is how long a run is sampled for its population reading
// after warmup, averaged to smooth out tick-to-tick noise.
const measureTicks = 20 * 60

const initialPopulation = 200

// FitnessEvaluator runs headless simulations and scores how close a
// parameter vector lands the population to targetPopulation.
// Grounded on the teacher's cmd/optimize/fitness.go FitnessEvaluator,
// trimmed from its predator/prey survival-time score to a population
// target since this core has no distinct species roles.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	bestParams  []float64
}

func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// Evaluate computes fitness for a raw (already-denormalized) parameter
// vector. Lower is better. Every seed's run is scored independently and
// averaged, so a parameter setting that only works for one seed doesn't
// win the search.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	results := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(raw, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		total += r
	}
	avg := total / float64(len(results))

	fe.mu.Lock()
	if avg < fe.bestFitness {
		fe.bestFitness = avg
		fe.bestParams = append([]float64(nil), raw...)
	}
	fe.mu.Unlock()

	return avg
}

// BestParams returns the best raw parameter vector seen so far.
func (fe *FitnessEvaluator) BestParams() []float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestParams
}

// runSimulation drives one headless Engine for maxTicks, applying raw
// to its configure-time tunables, and returns a single-seed fitness
// score: squared relative distance from targetPopulation over the
// measurement window, with a fixed penalty if the population goes
// extinct before the window closes.
func (fe *FitnessEvaluator) runSimulation(raw []float64, seed int64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, raw)

	engine := sim.NewWithParams(sim.Params{
		WorldSize:       cfg.Derived.WorldSize32,
		Capacity:        int32(cfg.World.Capacity),
		Seed:            seed,
		GridResolution:  cfg.Spatial.Resolution,
		AnalyticsDepth:  cfg.Telemetry.RingBufferDepth,
		GenerationTicks: int64(cfg.Telemetry.GenerationTicks),
	})

	mutationRate := float32(cfg.Physics.MutationRate)
	foodAbundance := float32(cfg.Physics.FoodAbundance)
	friction := float32(cfg.Physics.Friction)
	engine.Configure(sim.Options{
		MutationRate:  &mutationRate,
		FoodAbundance: &foodAbundance,
		Friction:      &friction,
	})

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < initialPopulation; i++ {
		x := rng.Float32() * cfg.Derived.WorldSize32
		y := rng.Float32() * cfg.Derived.WorldSize32
		var genome sim.Genome
		for g := range genome {
			genome[g] = rng.Float32()
		}
		engine.Spawn(x, y, genome)
	}

	const dt = 1.0 / 60.0
	var sampleSum float64
	var samples int

	for tick := 0; tick < fe.maxTicks; tick++ {
		engine.Tick(dt)
		if engine.ActiveCount() == 0 {
			return extinctionPenalty
		}
		if tick < warmupTicks {
			continue
		}
		if tick >= warmupTicks+measureTicks {
			break
		}
		sampleSum += float64(engine.ActiveCount())
		samples++
	}

	if samples == 0 {
		return extinctionPenalty
	}
	meanPop := sampleSum / float64(samples)
	rel := (meanPop - targetPopulation) / targetPopulation
	return rel * rel
}

// extinctionPenalty is returned for any run that dies out before its
// measurement window closes. It must dominate every attainable
// near-target score (bounded near 0) so the optimizer always prefers a
// surviving run over an extinct one.
const extinctionPenalty = 1e6

func (fe *FitnessEvaluator) copyConfig() *config.Config {
	c := *fe.baseConfig
	return &c
}
