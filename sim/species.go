package sim

import "math"

// Species is a prototype-based cluster record (spec.md §3). IDs are
// monotonically increasing and never reused.
type Species struct {
	ID              uint32
	PrototypeGenome Genome
	Population      uint32
	ColorHint       [3]uint8
}

// SpeciesTracker implements the prototype-nearest online clustering
// described in spec.md §4.4. Grounded on the bookkeeping shape of the
// teacher's NEAT SpeciesManager (monotonic IDs, a slice of species,
// population counters) with compatibility-distance and fitness tracking
// replaced by the spec's normalized-Euclidean genome distance.
type SpeciesTracker struct {
	species     []Species
	byID        map[uint32]int // id -> index into species, kept in sync
	nextID      uint32
	threshold   float32
}

// NewSpeciesTracker creates an empty tracker. threshold is the normalized
// Euclidean distance below which a genome joins an existing prototype
// (spec.md §4.4 default: 0.05).
func NewSpeciesTracker(threshold float32) *SpeciesTracker {
	return &SpeciesTracker{
		byID:      make(map[uint32]int),
		nextID:    1,
		threshold: threshold,
	}
}

// genomeDistance is the normalized Euclidean distance spec.md §4.4
// defines: sqrt(Σ(a-b)²) / sqrt(8), so d ∈ [0,1] for genes already in [0,1].
func genomeDistance(a, b Genome) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum))) / float32(math.Sqrt(float64(GeneCount)))
}

// Identify scans prototypes for the nearest match. If its distance is
// below the threshold, the genome joins that species and its population
// is incremented; otherwise a new species is created with this genome as
// its prototype, population 1, a fresh monotone id, and a color hint
// derived from (AGG, PHO, DEF).
func (t *SpeciesTracker) Identify(genome Genome) uint32 {
	bestIdx := -1
	bestDist := float32(math.MaxFloat32)
	for i := range t.species {
		d := genomeDistance(genome, t.species[i].PrototypeGenome)
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}

	if bestIdx >= 0 && bestDist < t.threshold {
		t.species[bestIdx].Population++
		return t.species[bestIdx].ID
	}

	id := t.nextID
	t.nextID++
	sp := Species{
		ID:              id,
		PrototypeGenome: genome,
		Population:      1,
		ColorHint: [3]uint8{
			uint8(genome[GeneAGG] * 255),
			uint8(genome[GenePHO] * 255),
			uint8(genome[GeneDEF] * 255),
		},
	}
	t.species = append(t.species, sp)
	t.byID[id] = len(t.species) - 1
	return id
}

// ResetCounts zeroes every species' population ahead of a full pass.
func (t *SpeciesTracker) ResetCounts() {
	for i := range t.species {
		t.species[i].Population = 0
	}
}

// Prune deletes every species left at population 0 after a pass.
func (t *SpeciesTracker) Prune() {
	kept := t.species[:0]
	for _, sp := range t.species {
		if sp.Population > 0 {
			kept = append(kept, sp)
		}
	}
	t.species = kept

	t.byID = make(map[uint32]int, len(t.species))
	for i, sp := range t.species {
		t.byID[sp.ID] = i
	}
}

// Has reports whether id currently names a live species (or is -1, the
// "no species yet" sentinel spec.md §3 defines).
func (t *SpeciesTracker) Has(id int32) bool {
	if id == -1 {
		return true
	}
	_, ok := t.byID[uint32(id)]
	return ok
}

// All returns every currently tracked species.
func (t *SpeciesTracker) All() []Species {
	return t.species
}

// Count returns the number of currently tracked species.
func (t *SpeciesTracker) Count() int {
	return len(t.species)
}
