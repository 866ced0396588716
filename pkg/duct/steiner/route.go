package steiner

import (
	"cmp"
	"slices"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// route turns every tree edge into one straight run or an L.
func route(t Tree) []duct.Segment {
	var placed []duct.Segment
	for _, e := range t.Edges {
		a, b := t.Points[e.U], t.Points[e.V]
		if a == b {
			continue
		}
		if a.X == b.X || a.Y == b.Y {
			placed = appendRun(placed, a, b)
			continue
		}
		hFirst := grid.Pt(b.X, a.Y)
		vFirst := grid.Pt(a.X, b.Y)
		corner := hFirst
		if reuse(placed, a, vFirst, b) > reuse(placed, a, hFirst, b) {
			corner = vFirst
		}
		placed = appendRun(placed, a, corner)
		placed = appendRun(placed, corner, b)
	}
	return placed
}

func appendRun(segs []duct.Segment, a, b grid.Point) []duct.Segment {
	s, err := duct.NewSegment(a, b)
	if err != nil {
		return segs
	}
	return append(segs, s)
}

// reuse counts placed runs that overlap either leg of the L a-corner-b.
func reuse(placed []duct.Segment, a, corner, b grid.Point) int {
	n := 0
	for _, leg := range [][2]grid.Point{{a, corner}, {corner, b}} {
		s, err := duct.NewSegment(leg[0], leg[1])
		if err != nil {
			continue
		}
		for _, p := range placed {
			if overlaps(s, p) {
				n++
			}
		}
	}
	return n
}

// overlaps reports whether s and t are collinear and share a stretch of
// positive length.
func overlaps(s, t duct.Segment) bool {
	if s.Orientation != t.Orientation {
		return false
	}
	var lo1, hi1, lo2, hi2 int
	switch s.Orientation {
	case grid.Horizontal:
		if s.A.Y != t.A.Y {
			return false
		}
		lo1, hi1 = minmax(s.A.X, s.B.X)
		lo2, hi2 = minmax(t.A.X, t.B.X)
	case grid.Vertical:
		if s.A.X != t.A.X {
			return false
		}
		lo1, hi1 = minmax(s.A.Y, s.B.Y)
		lo2, hi2 = minmax(t.A.Y, t.B.Y)
	}
	return max(lo1, lo2) < min(hi1, hi2)
}

func minmax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// split cuts every run at the endpoints of other runs lying strictly inside
// it, so that tees and overlaps meet at shared endpoints.
func split(segs []duct.Segment) []duct.Segment {
	var ends []grid.Point
	seen := make(map[grid.Point]bool)
	for _, s := range segs {
		for _, p := range s.Endpoints() {
			if !seen[p] {
				seen[p] = true
				ends = append(ends, p)
			}
		}
	}

	out := make([]duct.Segment, 0, len(segs))
	for _, s := range segs {
		var cuts []grid.Point
		for _, p := range ends {
			if s.Interior(p) {
				cuts = append(cuts, p)
			}
		}
		if len(cuts) == 0 {
			out = append(out, s)
			continue
		}
		slices.SortFunc(cuts, func(p, q grid.Point) int {
			return cmp.Compare(grid.Manhattan(s.A, p), grid.Manhattan(s.A, q))
		})
		prev := s.A
		for _, c := range append(cuts, s.B) {
			out = appendRun(out, prev, c)
			prev = c
		}
	}
	return out
}

// dedupe keeps the first run of each orientation-independent key.
func dedupe(segs []duct.Segment) []duct.Segment {
	seen := make(map[[2]grid.Point]bool, len(segs))
	out := segs[:0:0]
	for _, s := range segs {
		k := s.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

// orient roots the runs at root: each kept run points away from the root
// (A upstream) and the list comes out in breadth-first order. Runs closing
// a cycle are dropped, as are dead-end runs that reach no point in keep.
func orient(segs []duct.Segment, root grid.Point, keep map[grid.Point]bool) []duct.Segment {
	adj := duct.BuildAdjacency(segs)
	used := make([]bool, len(segs))
	visited := map[grid.Point]bool{root: true}
	var tree []duct.Segment

	queue := []grid.Point{root}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, i := range adj[p] {
			if used[i] {
				continue
			}
			used[i] = true
			q := segs[i].Other(p)
			if visited[q] {
				continue
			}
			visited[q] = true
			s := segs[i]
			s.A, s.B = p, q
			tree = append(tree, s)
			queue = append(queue, q)
		}
	}

	for {
		children := make(map[grid.Point]int, len(tree))
		for _, s := range tree {
			children[s.A]++
		}
		pruned := tree[:0:0]
		for _, s := range tree {
			if children[s.B] == 0 && !keep[s.B] {
				continue
			}
			pruned = append(pruned, s)
		}
		if len(pruned) == len(tree) {
			return tree
		}
		tree = pruned
	}
}

// assignFlows sets each run's flow to the outlet flow downstream of it.
// segs must be oriented and in breadth-first order.
func assignFlows(segs []duct.Segment, outlets []duct.Terminal) []duct.Segment {
	below := make(map[grid.Point]float64, len(outlets))
	for _, o := range outlets {
		below[o.Pos] += o.Flow
	}
	out := slices.Clone(segs)
	for i := len(out) - 1; i >= 0; i-- {
		out[i].Flow = below[out[i].B]
		below[out[i].A] += out[i].Flow
	}
	return out
}

// TotalLength returns the summed run length in grid cells.
func TotalLength(segs []duct.Segment) int {
	n := 0
	for _, s := range segs {
		n += s.Length()
	}
	return n
}
