package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/quietloop/cellcore/config"
	"github.com/quietloop/cellcore/sim"
)

// telemetryRow is the flat, gocsv-tagged shape one Telemetry digest is
// written as. Grounded on the teacher's telemetry/stats.go WindowStats,
// which carried the same per-field csv tags for a headless CSV export.
type telemetryRow struct {
	Tick             int64 `csv:"tick"`
	AliveCount       int32 `csv:"alive_count"`
	CumulativeBirths int64 `csv:"cumulative_births"`
	CumulativeDeaths int64 `csv:"cumulative_deaths"`
	FrameDeaths      int32 `csv:"frame_deaths"`
	Generation       int64 `csv:"generation"`
	SpeciesCount     int   `csv:"species_count"`

	PopulationMean float64 `csv:"population_mean"`
	PopulationP10  float64 `csv:"population_p10"`
	PopulationP50  float64 `csv:"population_p50"`
	PopulationP90  float64 `csv:"population_p90"`
}

func toTelemetryRow(t sim.Telemetry) telemetryRow {
	return telemetryRow{
		Tick:             t.Tick,
		AliveCount:       t.AliveCount,
		CumulativeBirths: t.CumulativeBirths,
		CumulativeDeaths: t.CumulativeDeaths,
		FrameDeaths:      t.FrameDeaths,
		Generation:       t.Generation,
		SpeciesCount:     t.SpeciesCount,
		PopulationMean:   t.Population.Mean,
		PopulationP10:    t.Population.P10,
		PopulationP50:    t.Population.P50,
		PopulationP90:    t.Population.P90,
	}
}

// outputManager writes one telemetry.csv row per tick plus a config
// snapshot, grounded on the teacher's telemetry/output.go OutputManager —
// same header-written-once pattern, trimmed to the one CSV stream this
// core actually produces.
type outputManager struct {
	dir                    string
	telemetryFile          *os.File
	telemetryHeaderWritten bool
}

func newOutputManager(dir string) (*outputManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	return &outputManager{dir: dir, telemetryFile: f}, nil
}

func (om *outputManager) writeConfig(cfg *config.Config) error {
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

func (om *outputManager) writeTelemetry(t sim.Telemetry) error {
	records := []telemetryRow{toTelemetryRow(t)}
	if !om.telemetryHeaderWritten {
		if err := gocsv.Marshal(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.telemetryHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.telemetryFile); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

func (om *outputManager) Close() error {
	if om.telemetryFile == nil {
		return nil
	}
	return om.telemetryFile.Close()
}
