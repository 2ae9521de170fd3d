package sim

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// environmentResolution is the coarse sample grid side length (spec.md §4.2
// suggests 64x64).
const environmentResolution = 64

// Environment holds the three static 2-D scalar fields sampled by world
// coordinate: solar intensity, poison, and barrier. All three are baked
// once at construction from deterministic noise so repeated samples at the
// same coordinate always agree, as spec.md §4.2 requires.
type Environment struct {
	worldSize float32
	cellSize  float32

	solar   [environmentResolution * environmentResolution]float32
	poison  [environmentResolution * environmentResolution]float32
	barrier [environmentResolution * environmentResolution]bool
}

// NewEnvironment bakes solar/poison/barrier fields for a worldSize x
// worldSize world from opensimplex noise, seeded for reproducibility.
// Grounded on the teacher's own hand-rolled Perlin generator
// (systems/noise.go) but using the ecosystem noise library directly.
func NewEnvironment(worldSize float32, seed int64) *Environment {
	e := &Environment{
		worldSize: worldSize,
		cellSize:  worldSize / environmentResolution,
	}

	solarNoise := opensimplex.New(seed)
	poisonNoise := opensimplex.New(seed + 1)
	barrierNoise := opensimplex.New(seed + 2)

	const solarScale = 3.0 / environmentResolution
	const poisonScale = 6.0 / environmentResolution
	const barrierScale = 5.0 / environmentResolution

	for y := 0; y < environmentResolution; y++ {
		for x := 0; x < environmentResolution; x++ {
			idx := y*environmentResolution + x

			sv := solarNoise.Eval2(float64(x)*solarScale, float64(y)*solarScale)
			e.solar[idx] = float32(clamp01((sv + 1) / 2))

			pv := poisonNoise.Eval2(float64(x)*poisonScale, float64(y)*poisonScale)
			// Poison is sparse: only hotspots (high noise values) register.
			pv = (pv + 1) / 2
			if pv < 0.85 {
				e.poison[idx] = 0
			} else {
				e.poison[idx] = float32((pv - 0.85) / 0.15)
			}

			bv := barrierNoise.Eval2(float64(x)*barrierScale, float64(y)*barrierScale)
			e.barrier[idx] = bv > 0.6
		}
	}

	return e
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cellIndex maps a world coordinate to a field cell, reporting whether the
// coordinate lies within the world rectangle at all.
func (e *Environment) cellIndex(x, y float32) (int, bool) {
	if x < 0 || x >= e.worldSize || y < 0 || y >= e.worldSize {
		return 0, false
	}
	cx := int(x / e.cellSize)
	cy := int(y / e.cellSize)
	if cx < 0 {
		cx = 0
	} else if cx >= environmentResolution {
		cx = environmentResolution - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= environmentResolution {
		cy = environmentResolution - 1
	}
	return cy*environmentResolution + cx, true
}

// Solar samples the solar field, scaled by solarConstant, in [0, solarConstant].
// Out-of-world samples return zero (spec.md §4.2).
func (e *Environment) Solar(x, y, solarConstant float32) float32 {
	idx, ok := e.cellIndex(x, y)
	if !ok {
		return 0
	}
	return e.solar[idx] * solarConstant
}

// Poison samples the poison field; out-of-world samples return zero.
func (e *Environment) Poison(x, y float32) float32 {
	idx, ok := e.cellIndex(x, y)
	if !ok {
		return 0
	}
	return e.poison[idx]
}

// Blocked samples the barrier field; out-of-world coordinates are treated
// as blocked (spec.md §4.2: "treated as out-of-world").
func (e *Environment) Blocked(x, y float32) bool {
	idx, ok := e.cellIndex(x, y)
	if !ok {
		return true
	}
	return e.barrier[idx]
}
