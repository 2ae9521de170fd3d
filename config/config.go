// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Spatial   SpatialConfig   `yaml:"spatial"`
	Species   SpeciesConfig   `yaml:"species"`
	Colony    ColonyConfig    `yaml:"colony"`
	Alliance  AllianceConfig  `yaml:"alliance"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world size and population capacity.
type WorldConfig struct {
	Size     float64 `yaml:"size"`     // world is a Size x Size square
	Capacity int     `yaml:"capacity"` // fixed agent slot count
}

// PhysicsConfig holds tunables covered by spec.md §6's Configure table.
type PhysicsConfig struct {
	Friction      float64 `yaml:"friction"`       // 0.80..1.00, applied once per integrate call
	MutationRate  float64 `yaml:"mutation_rate"`  // 0..10, global multiplier on mutation stddev
	FoodAbundance float64 `yaml:"food_abundance"` // 0.1..5, multiplier on solar energy gain
	SolarConstant float64 `yaml:"solar_constant"` // 0..2, multiplier on all solar samples
}

// SpatialConfig holds uniform-grid spatial index parameters.
type SpatialConfig struct {
	Resolution int `yaml:"resolution"` // cells per axis
}

// SpeciesConfig holds species-tracker pass parameters.
type SpeciesConfig struct {
	IntervalTicks int     `yaml:"interval_ticks"` // cadence of re-identification passes
	Threshold     float64 `yaml:"threshold"`      // normalized-Euclidean match distance
}

// ColonyConfig holds colony-formation pass parameters.
type ColonyConfig struct {
	IntervalTicks         int     `yaml:"interval_ticks"`
	DensityThreshold      int     `yaml:"density_threshold"`       // T, normal regime
	SearchRadius          float64 `yaml:"search_radius"`           // R, normal regime
	DenseActiveThreshold  int     `yaml:"dense_active_threshold"`  // active_count above which the dense regime kicks in
	DenseDensityThreshold int     `yaml:"dense_density_threshold"` // T, dense regime
	DenseSearchRadius     float64 `yaml:"dense_search_radius"`     // R, dense regime
}

// AllianceConfig holds alliance-maintenance pass parameters.
type AllianceConfig struct {
	IntervalTicks       int     `yaml:"interval_ticks"`
	MinMass             float64 `yaml:"min_mass"`              // candidate mass floor
	MaxDistance         float64 `yaml:"max_distance"`          // center-distance cutoff for triplet membership
	GeneDeltaThreshold  float64 `yaml:"gene_delta_threshold"`  // Σ|Δgene| cutoff on SPD/AGG/PHO
	FusionMassThreshold float64 `yaml:"fusion_mass_threshold"` // triplet total mass above which fusion triggers
	FusionSynergy       float64 `yaml:"fusion_synergy"`        // mass multiplier applied on fusion
	FusionEnergy        float64 `yaml:"fusion_energy"`         // energy assigned to a fused super-colony
}

// TelemetryConfig holds analytics/telemetry parameters.
type TelemetryConfig struct {
	WindowTicks     int `yaml:"window_ticks"`     // not read by the engine, which records one analytics snapshot per tick
	RingBufferDepth int `yaml:"ring_buffer_depth"` // number of retained snapshots
	GenerationTicks int `yaml:"generation_ticks"` // ticks per telemetry "generation" counter
}

// DerivedConfig holds values computed once after loading, cached for hot paths.
type DerivedConfig struct {
	WorldSize32 float32
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.clamp()
	cfg.computeDerived()

	return cfg, nil
}

// clamp keeps every tunable inside the ranges spec.md §6 defines.
func (c *Config) clamp() {
	c.Physics.MutationRate = clampf(c.Physics.MutationRate, 0, 10)
	c.Physics.FoodAbundance = clampf(c.Physics.FoodAbundance, 0.1, 5)
	c.Physics.Friction = clampf(c.Physics.Friction, 0.80, 1.00)
	c.Physics.SolarConstant = clampf(c.Physics.SolarConstant, 0, 2)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldSize32 = float32(c.World.Size)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
