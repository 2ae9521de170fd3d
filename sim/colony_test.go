package sim

import "testing"

func TestColonyPassMergesDenseClusterAtCentroid(t *testing.T) {
	e := NewWithParams(Params{
		WorldSize:              1000,
		Capacity:               16,
		ColonyDensityThreshold: 3,
		ColonySearchRadius:     10,
	})

	// Three agents tightly clustered, well within the 10-unit search radius
	// of each other, should merge into one on the colony pass.
	a, _ := e.Spawn(100, 100, nonZeroGenome())
	b, _ := e.Spawn(102, 100, nonZeroGenome())
	c, _ := e.Spawn(100, 102, nonZeroGenome())
	e.store.masses[a] = 2
	e.store.masses[b] = 3
	e.store.masses[c] = 4

	e.grid.Rebuild(e.store)
	e.runColonyPass()

	// The merged body is spawned after the members are freed and may reuse
	// one of their slots (LIFO free-list), so an index still active must
	// hold the merged mass 9, never an original member.
	for _, m := range []int32{a, b, c} {
		if e.store.IsActive(m) && e.store.masses[m] != 9 {
			t.Errorf("expected cluster member %d to be removed by the merge", m)
		}
	}
	if e.store.ActiveCount() != 1 {
		t.Fatalf("expected exactly one surviving merged agent, got %d", e.store.ActiveCount())
	}

	events := e.DrainEvents()
	found := false
	for _, ev := range events {
		if ev.Type == EventColony {
			found = true
			if ev.Mass != 9 {
				t.Errorf("expected merged mass 9 (2+3+4), got %f", ev.Mass)
			}
		}
	}
	if !found {
		t.Error("expected a Colony event to be emitted")
	}
}

func TestColonyPassFiltersByArchetypeAndPicksMostEnergeticMember(t *testing.T) {
	e := NewWithParams(Params{
		WorldSize:              1000,
		Capacity:               16,
		ColonyDensityThreshold: 3,
		ColonySearchRadius:     10,
	})

	// a, b, c share an archetype and are tightly clustered; d sits in the
	// same cluster but carries a different archetype, so it must neither
	// join the merge nor count toward the seed's density threshold.
	a, _ := e.Spawn(100, 100, nonZeroGenome())
	b, _ := e.Spawn(102, 100, nonZeroGenome())
	c, _ := e.Spawn(100, 102, nonZeroGenome())
	d, _ := e.Spawn(101, 101, nonZeroGenome())

	e.store.archetypes[a] = Predator
	e.store.archetypes[b] = Predator
	e.store.archetypes[c] = Predator
	e.store.archetypes[d] = Producer

	e.store.masses[a] = 2
	e.store.masses[b] = 3
	e.store.masses[c] = 4
	e.store.masses[d] = 5

	e.store.energies[a] = 50
	e.store.energies[b] = 200 // most energetic member of the merging trio
	e.store.energies[c] = 10
	e.store.energies[d] = 9000 // irrelevant: different archetype, excluded

	bGenome := e.store.genomes[b]

	e.grid.Rebuild(e.store)
	e.runColonyPass()

	// The merged child may reuse one of the trio's freed slots (LIFO
	// free-list); any of a, b, c still active must hold the merged mass 9.
	for _, m := range []int32{a, b, c} {
		if e.store.IsActive(m) && e.store.masses[m] != 9 {
			t.Errorf("expected trio member %d to be removed by the merge", m)
		}
	}
	if !e.store.IsActive(d) {
		t.Error("expected the different-archetype agent to survive the merge untouched")
	}
	if e.store.ActiveCount() != 2 {
		t.Fatalf("expected the merged child plus the untouched d, got %d active", e.store.ActiveCount())
	}

	var child int32 = -1
	for i := int32(0); i < e.store.Capacity(); i++ {
		if e.store.IsActive(i) && i != d {
			child = i
			break
		}
	}
	if child == -1 {
		t.Fatal("expected to find the merged replacement agent")
	}

	const wantMass = float32(9) // 2+3+4
	if e.store.masses[child] != wantMass {
		t.Errorf("expected merged mass %v, got %v", wantMass, e.store.masses[child])
	}

	wantEnergy := float32(200) + 10*wantMass // max member energy + 10*total mass
	if e.store.energies[child] != wantEnergy {
		t.Errorf("expected merged energy %v (max+10*mass), got %v", wantEnergy, e.store.energies[child])
	}

	if e.store.genomes[child] != bGenome {
		t.Error("expected the merged child to inherit the most-energetic member's genome")
	}

	if e.store.archetypes[child] != Predator {
		t.Errorf("expected merged archetype %v, got %v", Predator, e.store.archetypes[child])
	}
}

func TestColonyPassExcludesVisitedMembersFromLaterSeeds(t *testing.T) {
	e := NewWithParams(Params{
		WorldSize:              1000,
		Capacity:               16,
		ColonyDensityThreshold: 3,
		ColonySearchRadius:     9,
	})

	// a is seeded first and gathers only {a, b} (2 < 3), so its cluster
	// doesn't merge. b must still come out of that gather marked visited
	// so that it can't be pulled into c's cluster next, even though b sits
	// within query range of both a and c: if b were left available, c's
	// seed would gather {b, c, d} and wrongly clear the threshold.
	a, _ := e.Spawn(100, 100, nonZeroGenome())
	b, _ := e.Spawn(102, 100, nonZeroGenome())
	c, _ := e.Spawn(110, 100, nonZeroGenome())
	d, _ := e.Spawn(111, 100, nonZeroGenome())

	e.grid.Rebuild(e.store)
	e.runColonyPass()

	if !e.store.IsActive(a) || !e.store.IsActive(b) || !e.store.IsActive(c) || !e.store.IsActive(d) {
		t.Error("expected every agent to survive: no cluster should clear the density threshold")
	}
	if e.store.ActiveCount() != 4 {
		t.Fatalf("expected all 4 agents to remain active, got %d", e.store.ActiveCount())
	}

	events := e.DrainEvents()
	for _, ev := range events {
		if ev.Type == EventColony {
			t.Error("expected no Colony event when no cluster reaches the density threshold")
		}
	}
}

func TestColonyPassLeavesSparseAgentsAlone(t *testing.T) {
	e := NewWithParams(Params{
		WorldSize:              1000,
		Capacity:               8,
		ColonyDensityThreshold: 5,
		ColonySearchRadius:     10,
	})
	a, _ := e.Spawn(500, 500, nonZeroGenome())

	e.grid.Rebuild(e.store)
	e.runColonyPass()

	if !e.store.IsActive(a) {
		t.Error("expected a lone agent below the density threshold to survive")
	}
}
