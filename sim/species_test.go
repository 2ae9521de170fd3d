package sim

import "testing"

func TestSpeciesIdentifyGroupsCloseGenomes(t *testing.T) {
	tr := NewSpeciesTracker(0.05)
	base := Genome{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	close := base
	close[0] += 0.001

	idA := tr.Identify(base)
	idB := tr.Identify(close)
	if idA != idB {
		t.Errorf("expected nearly identical genomes to share a species, got %d and %d", idA, idB)
	}
	if tr.Count() != 1 {
		t.Errorf("expected exactly one species, got %d", tr.Count())
	}
}

func TestSpeciesIdentifySeparatesDistantGenomes(t *testing.T) {
	tr := NewSpeciesTracker(0.05)
	a := Genome{1, 0, 0, 0, 0, 0, 0, 0}
	b := Genome{0, 1, 0, 0, 0, 0, 0, 0}

	idA := tr.Identify(a)
	idB := tr.Identify(b)
	if idA == idB {
		t.Error("expected distant genomes to form separate species")
	}
	if tr.Count() != 2 {
		t.Errorf("expected two species, got %d", tr.Count())
	}
}

func TestSpeciesResetAndPruneDropsExtinctSpecies(t *testing.T) {
	tr := NewSpeciesTracker(0.05)
	id := tr.Identify(Genome{1, 0, 0, 0, 0, 0, 0, 0})
	tr.ResetCounts()
	tr.Prune()
	if tr.Count() != 0 {
		t.Errorf("expected species with zero population pruned, got %d remaining", tr.Count())
	}
	if tr.Has(int32(id)) {
		t.Error("expected pruned species id to no longer be known")
	}
}

func TestSpeciesHasTreatsNegativeOneAsValid(t *testing.T) {
	tr := NewSpeciesTracker(0.05)
	if !tr.Has(-1) {
		t.Error("expected the -1 sentinel to always report as valid")
	}
}

func TestGenomeDistanceIsNormalized(t *testing.T) {
	a := Genome{1, 1, 1, 1, 1, 1, 1, 1}
	b := Genome{0, 0, 0, 0, 0, 0, 0, 0}
	d := genomeDistance(a, b)
	if d < 0.99 || d > 1.01 {
		t.Errorf("expected maximally distant genomes to normalize to ~1, got %f", d)
	}
}
