package sim

// runAlliancePass implements spec.md §4.7's alliance maintenance: on its
// own cadence, it looks for triplets made of a seed agent and the first two
// agents close to and genetically compatible with that seed (the two
// partners are not compared with each other) and either binds them into a
// standing alliance or, if
// their combined mass clears the fusion threshold, fuses them into a
// single super-colony outright. Grounded on the teacher's
// systems/breeding.go collect-then-process shape: gather eligible
// candidates first, then decide what to do with each group.
func (e *Engine) runAlliancePass() {
	capacity := e.store.Capacity()

	if int32(len(e.allianceVisited)) != capacity {
		e.allianceVisited = make([]bool, capacity)
	} else {
		for i := range e.allianceVisited {
			e.allianceVisited[i] = false
		}
	}
	if e.alliancePartners == nil {
		e.alliancePartners = make([]int32, 0, 32)
	}

	// Alliance ids are scoped to the interval between two passes (spec.md
	// §3): every active agent's id is cleared here so this pass always
	// re-evaluates triplets from scratch, rather than skipping agents
	// bound on a previous pass forever.
	for i := int32(0); i < capacity; i++ {
		if e.store.active[i] {
			e.store.allianceID[i] = -1
		}
	}

	maxDistSq := e.allianceMaxDistance * e.allianceMaxDistance

	for i := int32(0); i < capacity; i++ {
		if !e.store.active[i] || e.allianceVisited[i] {
			continue
		}
		if e.store.masses[i] < e.allianceMinMass || e.store.allianceID[i] != -1 {
			continue
		}

		pos := e.store.positions[i]
		genomeI := e.store.genomes[i]
		partners := e.alliancePartners[:0]

		e.grid.Query(pos.X, pos.Y, e.allianceMaxDistance, func(j int32) {
			if j == i || !e.store.active[j] || e.allianceVisited[j] {
				return
			}
			if e.store.masses[j] < e.allianceMinMass || e.store.allianceID[j] != -1 {
				return
			}
			npos := e.store.positions[j]
			dx, dy := npos.X-pos.X, npos.Y-pos.Y
			if dx*dx+dy*dy > maxDistSq {
				return
			}
			genomeJ := e.store.genomes[j]
			delta := absf(genomeI[GeneSPD]-genomeJ[GeneSPD]) +
				absf(genomeI[GeneAGG]-genomeJ[GeneAGG]) +
				absf(genomeI[GenePHO]-genomeJ[GenePHO])
			if delta > e.allianceGeneDelta {
				return
			}
			partners = append(partners, j)
		})
		e.alliancePartners = partners

		if len(partners) < 2 {
			continue
		}
		a, b := partners[0], partners[1]
		members := [3]int32{i, a, b}
		totalMass := e.store.masses[i] + e.store.masses[a] + e.store.masses[b]

		if totalMass > e.fusionMassThreshold {
			e.fuseAlliance(members[:])
			continue
		}

		id := e.nextAllianceID
		e.nextAllianceID++
		for _, m := range members {
			e.store.allianceID[m] = id
			e.allianceVisited[m] = true
		}
		e.events.push(newAllianceEvent(e.tick, e.store.archetypes[i], len(members)))
	}
}

// fuseAlliance removes every member of a triplet whose combined mass
// cleared the fusion threshold and spawns a single super-colony in their
// place, taking on the most-energetic member's genome (spec.md §4.7),
// with a mass synergy bonus and a fixed energy endowment.
func (e *Engine) fuseAlliance(members []int32) {
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
		e.allianceVisited[m] = true
		s.Remove(m)
	}

	child, ok := s.Spawn(cx, cy, genome)
	if !ok {
		return
	}
	s.masses[child] = totalMass * e.fusionSynergy
	s.energies[child] = e.fusionEnergy
	s.archetypes[child] = arch
	e.events.push(newFusionEvent(e.tick, child, arch, s.masses[child]))
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
