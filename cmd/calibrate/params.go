// Package main runs CMA-ES optimization over cellcore's bounded runtime
// tunables, searching for a setting that produces a target steady-state
// population. Grounded on the teacher's cmd/optimize, trimmed from its
// ~25-parameter predator/prey energy budget to the three tunables this
// core actually exposes through Engine.Configure.
package main

import "github.com/quietloop/cellcore/config"

// ParamSpec defines a single optimizable tunable, bounded the same way
// config.Config.clamp clamps it.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the full set of optimizable tunables, in a fixed
// order shared by Normalize/Denormalize/ApplyToConfig.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the three tunables Engine.Configure accepts.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "mutation_rate", Min: 0, Max: 10, Default: 1.0},
			{Name: "food_abundance", Min: 0.1, Max: 5, Default: 1.0},
			{Name: "friction", Min: 0.80, Max: 1.00, Default: 0.98},
		},
	}
}

func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1], the space CMA-ES
// actually searches over so all dimensions share one step-size scale.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds, e.g. after CMA-ES steps
// outside [0,1] during its search.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes clamped values into a Config's physics block, in
// Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Physics.MutationRate = clamped[0]
	cfg.Physics.FoodAbundance = clamped[1]
	cfg.Physics.Friction = clamped[2]
}
