package sim

// Grid is a uniform spatial hash over the world rectangle, rebuilt every
// tick by a two-pass counting sort (spec.md §4.3): count active agents per
// bucket, prefix-sum to offsets, then scatter indices into a flat array.
// This gives branch-free, allocation-free radius queries once built.
type Grid struct {
	resolution int     // cells per axis
	worldSize  float32
	cellSize   float32

	counts  []int32 // per-bucket counts, reused as scratch across rebuilds
	offsets []int32 // per-bucket start offset into indices
	indices []int32 // flat array of agent indices, grouped by bucket
}

// NewGrid creates a Grid with resolution cells per axis over a
// worldSize x worldSize world, sized to hold up to capacity agents.
func NewGrid(worldSize float32, resolution int, capacity int32) *Grid {
	buckets := resolution * resolution
	return &Grid{
		resolution: resolution,
		worldSize:  worldSize,
		cellSize:   worldSize / float32(resolution),
		counts:     make([]int32, buckets+1),
		offsets:    make([]int32, buckets+1),
		indices:    make([]int32, capacity),
	}
}

// bucketCoord clamps a world coordinate to a bucket column/row.
func (g *Grid) bucketCoord(v float32) int {
	c := int(v / g.cellSize)
	if c < 0 {
		return 0
	}
	if c >= g.resolution {
		return g.resolution - 1
	}
	return c
}

func (g *Grid) bucketOf(x, y float32) int {
	return g.bucketCoord(y)*g.resolution + g.bucketCoord(x)
}

// Rebuild repopulates the grid from the store's currently active agents.
// Positions outside [0, worldSize) are ignored, per spec.md §4.3's failure
// semantics ("positions outside the world are ignored at rebuild time").
func (g *Grid) Rebuild(s *Store) {
	buckets := g.resolution * g.resolution
	for i := range g.counts {
		g.counts[i] = 0
	}

	// Pass 1: count.
	for i := int32(0); i < s.capacity; i++ {
		if !s.active[i] {
			continue
		}
		pos := s.positions[i]
		if pos.X < 0 || pos.X >= g.worldSize || pos.Y < 0 || pos.Y >= g.worldSize {
			continue
		}
		g.counts[g.bucketOf(pos.X, pos.Y)]++
	}

	// Prefix sum into offsets.
	var running int32
	for b := 0; b < buckets; b++ {
		g.offsets[b] = running
		running += g.counts[b]
	}
	g.offsets[buckets] = running

	// Pass 2: scatter. cursor[b] tracks the next write slot within bucket b,
	// starting at its offset and reusing counts as the cursor array.
	cursor := g.counts
	copy(cursor, g.offsets[:buckets])

	if cap(g.indices) < int(running) {
		g.indices = make([]int32, running)
	}
	g.indices = g.indices[:running]

	for i := int32(0); i < s.capacity; i++ {
		if !s.active[i] {
			continue
		}
		pos := s.positions[i]
		if pos.X < 0 || pos.X >= g.worldSize || pos.Y < 0 || pos.Y >= g.worldSize {
			continue
		}
		b := g.bucketOf(pos.X, pos.Y)
		g.indices[cursor[b]] = i
		cursor[b]++
	}
}

// Query invokes visit(index) for every agent in a bucket overlapping the
// square [cx-r, cx+r] x [cy-r, cy+r]. The caller is responsible for the
// true-radius filter and for skipping the center agent itself (spec.md
// §4.3: "the index may emit the center agent itself; the caller must skip
// it"). Bucket ranges are clamped to the grid, per spec.md's failure
// semantics for out-of-range queries.
func (g *Grid) Query(cx, cy, r float32, visit func(index int32)) {
	minCol := g.bucketCoord(cx - r)
	maxCol := g.bucketCoord(cx + r)
	minRow := g.bucketCoord(cy - r)
	maxRow := g.bucketCoord(cy + r)

	for row := minRow; row <= maxRow; row++ {
		base := row * g.resolution
		for col := minCol; col <= maxCol; col++ {
			b := base + col
			start, end := g.offsets[b], g.offsets[b+1]
			for k := start; k < end; k++ {
				visit(g.indices[k])
			}
		}
	}
}
