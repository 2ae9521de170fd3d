package sim

import "math"

// reproductionCooldown is the post-reproduction refractory period, in
// seconds of simulated time, before an agent can trigger Store.Reproduce
// again.
const reproductionCooldown = 2.0

// behaviorParams bundles the per-tick, config-derived values the per-agent
// pass needs, snapshotted once per Tick rather than looked up per agent.
type behaviorParams struct {
	dt            float32
	foodAbundance float32
	solarConstant float32
	mutationRate  float32
}

// updateAgent runs the full per-agent pass described in spec.md §4.5 for a
// single active slot: thermodynamics, colony fragmentation, perception and
// interaction, locomotion, reproduction, death. It reads and writes the
// store directly, in index order, seeing whatever state earlier agents
// this tick already left behind — that read-after-write visibility is
// spec.md §5's explicit contract, not a race to fix.
func (e *Engine) updateAgent(i int32, p behaviorParams) {
	s := e.store
	if !s.active[i] {
		return
	}

	genome := s.genomes[i]
	pos := s.positions[i]
	vel := s.velocities[i]
	mass := s.masses[i]

	if s.cooldown[i] > 0 {
		s.cooldown[i] -= p.dt
		if s.cooldown[i] < 0 {
			s.cooldown[i] = 0
		}
	}

	// 1. Thermodynamics.
	speedSq := vel.X*vel.X + vel.Y*vel.Y
	siz := genome[GeneSIZ]
	vis := genome[GeneVIS]
	cost := (speedSq*0.5 + siz*siz*siz + vis*100*0.005) * p.dt
	s.energies[i] -= cost

	solar := e.env.Solar(pos.X, pos.Y, p.solarConstant)
	gain := solar * genome[GenePHO] * 45 * p.foodAbundance * p.dt
	if mass > 2 {
		gain *= 1 + log2(mass)
	}
	s.energies[i] += gain

	poison := e.env.Poison(pos.X, pos.Y)
	s.energies[i] -= poison * 50 * p.dt

	// 2. Colony fragmentation: dissolve mid-mass bodies into children.
	if mass > 1.5 && mass < 10 {
		e.fragmentColony(i, mass, genome)
		return
	}

	// 3. Perception and interaction.
	myEnergySnapshot := s.energies[i]
	visRadius := vis * 100
	radiusSq := visRadius * visRadius

	var huntTarget int32 = -1
	var huntDistSq float32
	var fleeTarget int32 = -1
	var fleeDistSq float32

	e.grid.Query(pos.X, pos.Y, visRadius, func(j int32) {
		if j == i || !s.active[j] {
			return
		}
		npos := s.positions[j]
		dx, dy := npos.X-pos.X, npos.Y-pos.Y
		distSq := dx*dx + dy*dy
		if distSq > radiusSq {
			return
		}

		myMass := s.masses[i]
		neighborMass := s.masses[j]
		sameAlliance := s.allianceID[i] != -1 && s.allianceID[i] == s.allianceID[j]

		// Absorption by larger body: terminates the neighbor.
		if myMass > neighborMass*1.2 && !sameAlliance {
			radius := eatRadius(myMass)
			if distSq <= radius*radius {
				s.masses[i] += neighborMass
				s.energies[i] += 0.5 * myEnergySnapshot
				e.removeAgent(j)
				e.events.push(newAbsorptionEvent(e.tick, i, j, neighborMass))
				return
			}
		}

		// Alliance cooperation: donor -> recipient energy transfer.
		if sameAlliance && s.energies[i] > 100 && s.energies[j] < 50 {
			amount := 10 * p.dt
			s.energies[i] -= amount
			s.energies[j] += amount
		}

		// Mass steal.
		if !sameAlliance && genome[GeneAGG] > 0.5 && myMass > neighborMass*1.2 {
			drain := float32(1.5) * p.dt
			if neighborMass-drain < 1.0 {
				e.events.push(newAssimilationEvent(e.tick, i, j, s.archetypes[i], s.archetypes[j]))
				s.masses[i] += neighborMass
				s.energies[i] += 15 * p.dt
				e.removeAgent(j)
				return
			}
			s.masses[j] -= drain
			s.masses[i] += drain
			s.energies[i] += 15 * p.dt
		}

		// Predation target selection: remember closest eligible prey.
		if s.energies[i] < 60 && s.genomes[j][GeneDEF] < genome[GeneAGG] && s.masses[i] >= s.masses[j] {
			if huntTarget == -1 || distSq < huntDistSq {
				huntTarget = j
				huntDistSq = distSq
			}
		}

		// Flee target selection: remember closest threat.
		if s.genomes[j][GeneAGG] > genome[GeneDEF] {
			if fleeTarget == -1 || distSq < fleeDistSq {
				fleeTarget = j
				fleeDistSq = distSq
			}
		}
	})

	if !s.active[i] {
		return // self was removed as someone else's neighbor earlier this tick
	}

	// 4. Locomotion.
	spd := genome[GeneSPD]
	s.flags[i] &^= FlagHunting | FlagFleeing
	switch {
	case fleeTarget != -1 && s.active[fleeTarget]:
		s.flags[i] |= FlagFleeing
		tpos := s.positions[fleeTarget]
		setVelocityTowards(s, i, pos.X-tpos.X+pos.X, pos.Y-tpos.Y+pos.Y, spd*100)
	case huntTarget != -1 && s.active[huntTarget]:
		s.flags[i] |= FlagHunting
		tpos := s.positions[huntTarget]
		setVelocityTowards(s, i, tpos.X, tpos.Y, spd*100)
		dx, dy := tpos.X-pos.X, tpos.Y-pos.Y
		eatDist := (genome[GeneSIZ] + s.genomes[huntTarget][GeneSIZ]) * 10
		if dx*dx+dy*dy < eatDist*eatDist {
			s.energies[i] += 30
			e.removeAgent(huntTarget)
		}
	default:
		v := &s.velocities[i]
		v.X += (e.rng.Float32()*2 - 1) * 5
		v.Y += (e.rng.Float32()*2 - 1) * 5
		capMagnitude(v, spd*50)
	}

	// 5. Reproduction. cooldown keeps a freshly-spawned parent from
	// reproducing again the same instant it crosses the energy threshold.
	if s.energies[i] > 150 && s.cooldown[i] <= 0 {
		if child, ok := s.Reproduce(i, e.rng, p.mutationRate); ok {
			s.energies[i] -= 80
			s.cooldown[i] = reproductionCooldown
			e.cumulativeBirths++
			e.events.push(newBirthEvent(e.tick, child, i, s.archetypes[child]))
		}
	}

	// 6. Death.
	if s.energies[i] <= 0 {
		e.removeAgent(i)
	}
}

// fragmentColony dissolves a mid-mass agent into up to 5 children,
// spec.md §4.5 step 2.
func (e *Engine) fragmentColony(i int32, mass float32, genome Genome) {
	s := e.store
	pos := s.positions[i]
	arch := s.archetypes[i]
	childCount := int(mass / 2)
	if childCount > 5 {
		childCount = 5
	}
	e.removeAgent(i)

	for k := 0; k < childCount; k++ {
		angle := e.rng.Float32() * 2 * math.Pi
		radius := 10 + e.rng.Float32()*20
		x := pos.X + radius*float32(math.Cos(float64(angle)))
		y := pos.Y + radius*float32(math.Sin(float64(angle)))
		if child, ok := s.Spawn(x, y, genome); ok {
			e.cumulativeBirths++
			e.events.push(newBirthEvent(e.tick, child, i, arch))
		}
	}
}

// removeAgent removes index and records bookkeeping shared by every death
// path (frame counter, cumulative counter, Death event).
func (e *Engine) removeAgent(index int32) {
	if !e.store.active[index] {
		return
	}
	arch := e.store.archetypes[index]
	e.store.Remove(index)
	e.frameDeaths++
	e.cumulativeDeaths++
	e.events.push(newDeathEvent(e.tick, index, arch))
}

// setVelocityTowards points agent i's velocity at (tx,ty) with the given
// magnitude.
func setVelocityTowards(s *Store, i int32, tx, ty, magnitude float32) {
	pos := s.positions[i]
	dx, dy := tx-pos.X, ty-pos.Y
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	v := &s.velocities[i]
	if dist < 1e-6 {
		v.X, v.Y = 0, 0
		return
	}
	v.X = dx / dist * magnitude
	v.Y = dy / dist * magnitude
}

// capMagnitude clamps v's length to at most max.
func capMagnitude(v *Vec2, max float32) {
	lenSq := v.X*v.X + v.Y*v.Y
	maxSq := max * max
	if lenSq <= maxSq || lenSq == 0 {
		return
	}
	scale := max / float32(math.Sqrt(float64(lenSq)))
	v.X *= scale
	v.Y *= scale
}

// eatRadius derives the absorption reach from mass (spec.md §4.5:
// "derived from my_mass, monotone in mass"). The exact curve is left open
// by spec.md; this uses a square-root growth so reach scales sub-linearly
// with mass, matching the sub-linear feeding-efficiency curve used
// elsewhere in this pass (1 + log2(mass)).
func eatRadius(mass float32) float32 {
	return 5 * float32(math.Sqrt(float64(mass)))
}

func log2(v float32) float32 {
	return float32(math.Log2(float64(v)))
}

// applyBoundary implements spec.md §4.5's boundary policy, run once per
// active agent after Store.Integrate: reflect off barrier cells with a
// slight impulse amplification, then wrap at the world edges. Coordinates
// outside the world count as blocked, so an agent that steps past an edge
// is reflected back first; the wrap applies only to a position still
// outside after that.
func (e *Engine) applyBoundary(i int32) {
	s := e.store
	pos := &s.positions[i]
	vel := &s.velocities[i]

	if e.env.Blocked(pos.X, pos.Y) {
		vel.X *= -1.2
		vel.Y *= -1.2
		pos.X += vel.X * 0.1
		pos.Y += vel.Y * 0.1
	}

	w := e.worldSize
	if pos.X < 0 {
		pos.X += w
	} else if pos.X > w {
		pos.X -= w
	}
	if pos.Y < 0 {
		pos.Y += w
	} else if pos.Y > w {
		pos.Y -= w
	}
}
