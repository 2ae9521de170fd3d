package sim

import "testing"

func TestGridRebuildAndQueryFindsNeighbors(t *testing.T) {
	s := NewStore(8)
	a, _ := s.Spawn(100, 100, nonZeroGenome())
	b, _ := s.Spawn(105, 100, nonZeroGenome())
	_, _ = s.Spawn(900, 900, nonZeroGenome()) // far away, should not appear

	g := NewGrid(1000, 16, 8)
	g.Rebuild(s)

	found := map[int32]bool{}
	g.Query(100, 100, 20, func(idx int32) {
		found[idx] = true
	})

	if !found[a] {
		t.Error("expected to find the center agent itself (caller filters)")
	}
	if !found[b] {
		t.Error("expected to find a nearby agent within query radius")
	}
	if len(found) > 2 {
		t.Errorf("expected only the two close agents in the query bucket range, got %d", len(found))
	}
}

func TestGridRebuildSkipsOutOfWorldPositions(t *testing.T) {
	s := NewStore(2)
	_, _ = s.Spawn(-5, -5, nonZeroGenome())
	in, _ := s.Spawn(50, 50, nonZeroGenome())

	g := NewGrid(100, 4, 2)
	g.Rebuild(s)

	found := map[int32]bool{}
	g.Query(50, 50, 200, func(idx int32) {
		found[idx] = true
	})
	if len(found) != 1 || !found[in] {
		t.Errorf("expected only the in-world agent to appear, got %v", found)
	}
}

func TestGridQueryClampsOutOfRangeBuckets(t *testing.T) {
	s := NewStore(1)
	idx, _ := s.Spawn(0, 0, nonZeroGenome())
	g := NewGrid(100, 4, 1)
	g.Rebuild(s)

	found := map[int32]bool{}
	// A query whose square lies wholly outside the world should clamp to
	// the grid's edge buckets rather than panic or wrap.
	g.Query(-1000, -1000, 50, func(i int32) {
		found[i] = true
	})
	if !found[idx] {
		t.Error("expected clamped query to still reach the corner bucket")
	}
}
