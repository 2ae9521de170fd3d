package sim

// runColonyPass implements spec.md §4.6's colony formation: a coarse,
// cadence-driven pass that looks for dense clusters of agents and
// replaces each one with a single merged body at the cluster's
// mass-weighted centroid. Grounded on the teacher's
// systems/splitting.go centroid/momentum arithmetic, run in reverse here
// (merging, not splitting).
//
// The density threshold T and search radius R switch to a dense regime
// once the world's active population exceeds a configured threshold; the
// defaults there use a lower T and a wider R, so clusters merge more
// readily as the world fills up.
func (e *Engine) runColonyPass() {
	capacity := e.store.Capacity()

	density := e.colonyDensityThreshold
	radius := e.colonySearchRadius
	if e.store.ActiveCount() > int32(e.colonyDenseActiveThresh) {
		density = e.colonyDenseDensity
		radius = e.colonyDenseRadius
	}

	if int32(len(e.colonyVisited)) != capacity {
		e.colonyVisited = make([]bool, capacity)
	} else {
		for i := range e.colonyVisited {
			e.colonyVisited[i] = false
		}
	}
	if e.colonyMembers == nil {
		e.colonyMembers = make([]int32, 0, 256)
	}

	radiusSq := radius * radius

	for i := int32(0); i < capacity; i++ {
		if !e.store.active[i] || e.colonyVisited[i] {
			continue
		}
		pos := e.store.positions[i]
		members := e.colonyMembers[:0]

		seedArch := e.store.archetypes[i]
		e.grid.Query(pos.X, pos.Y, radius, func(j int32) {
			if !e.store.active[j] || e.colonyVisited[j] {
				return
			}
			if e.store.archetypes[j] != seedArch {
				return
			}
			npos := e.store.positions[j]
			dx, dy := npos.X-pos.X, npos.Y-pos.Y
			if dx*dx+dy*dy > radiusSq {
				return
			}
			members = append(members, j)
		})

		// Every agent gathered into this seed's cluster is spoken for on
		// this pass (spec.md §4.6), whether or not the cluster clears the
		// density threshold, so sub-threshold members can't be re-gathered
		// into a later seed's cluster within the same pass.
		for _, m := range members {
			e.colonyVisited[m] = true
		}

		if len(members) < density {
			continue
		}
		e.colonyMembers = members
		e.mergeColony(members)
	}
}

// mergeColony removes every member and spawns a single replacement at
// their mass-weighted centroid, taking on the most-energetic member's
// genome (spec.md §4.6) and conserving total mass.
func (e *Engine) mergeColony(members []int32) {
	s := e.store

	var totalMass, cx, cy float32
	arch := s.archetypes[members[0]]
	maxEnergy := s.energies[members[0]]
	genome := s.genomes[members[0]]

	for _, m := range members {
		mass := s.masses[m]
		totalMass += mass
		pos := s.positions[m]
		cx += pos.X * mass
		cy += pos.Y * mass
		if s.energies[m] > maxEnergy {
			maxEnergy = s.energies[m]
			genome = s.genomes[m]
		}
	}
	if totalMass <= 0 {
		return
	}
	cx /= totalMass
	cy /= totalMass

	for _, m := range members {
		s.Remove(m)
	}

	child, ok := s.Spawn(cx, cy, genome)
	if !ok {
		return
	}
	s.masses[child] = totalMass
	s.energies[child] = maxEnergy + 10*totalMass
	s.archetypes[child] = arch
	e.events.push(newColonyEvent(e.tick, child, arch, totalMass))
}
