package duct

import (
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// Adjacency maps each endpoint to the indices of the segments ending there.
// Segments are connected only through exact shared endpoints.
type Adjacency map[grid.Point][]int

// BuildAdjacency indexes segs by endpoint.
func BuildAdjacency(segs []Segment) Adjacency {
	adj := make(Adjacency, 2*len(segs))
	for i, s := range segs {
		adj[s.A] = append(adj[s.A], i)
		if s.B != s.A {
			adj[s.B] = append(adj[s.B], i)
		}
	}
	return adj
}

// Degree returns how many segments end at p.
func (a Adjacency) Degree(p grid.Point) int { return len(a[p]) }

// Component returns the indices of all segments reachable from start through
// shared endpoints, in breadth-first order. start itself comes first.
func Component(segs []Segment, start int) []int {
	if start < 0 || start >= len(segs) {
		return nil
	}
	adj := BuildAdjacency(segs)
	seen := make([]bool, len(segs))
	seen[start] = true
	queue := []int{start}
	for head := 0; head < len(queue); head++ {
		s := segs[queue[head]]
		for _, p := range s.Endpoints() {
			for _, j := range adj[p] {
				if !seen[j] {
					seen[j] = true
					queue = append(queue, j)
				}
			}
		}
	}
	return queue
}

// ReachablePoints returns every endpoint reachable from p.
func ReachablePoints(segs []Segment, p grid.Point) map[grid.Point]bool {
	adj := BuildAdjacency(segs)
	seen := map[grid.Point]bool{p: true}
	queue := []grid.Point{p}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, i := range adj[cur] {
			q := segs[i].Other(cur)
			if !seen[q] {
				seen[q] = true
				queue = append(queue, q)
			}
		}
	}
	return seen
}

// FixedPoints returns the set of terminal positions; segment endpoints on
// these points must not move.
func FixedPoints(ts []Terminal) map[grid.Point]bool {
	fixed := make(map[grid.Point]bool, len(ts))
	for _, t := range ts {
		fixed[t.Pos] = true
	}
	return fixed
}

// CheckAxisAligned fails with INVALID_INPUT if any segment is diagonal or
// degenerate.
func CheckAxisAligned(segs []Segment) error {
	for i, s := range segs {
		o, ok := grid.OrientationOf(s.A, s.B)
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "segment %d %v-%v is not axis-aligned", i, s.A, s.B)
		}
		if o != s.Orientation {
			return errors.New(errors.ErrCodeInvalidInput, "segment %d %v-%v is %s but marked %s", i, s.A, s.B, o, s.Orientation)
		}
	}
	return nil
}

// CheckConnected fails with INCOMPLETE_TOPOLOGY unless every terminal can be
// reached from the inlet through shared segment endpoints.
func CheckConnected(ts []Terminal, segs []Segment) error {
	var inlet *Terminal
	for i := range ts {
		if ts[i].IsInlet() {
			inlet = &ts[i]
			break
		}
	}
	if inlet == nil {
		return errors.New(errors.ErrCodeIncompleteTopology, "no air inlet placed")
	}
	reach := ReachablePoints(segs, inlet.Pos)
	for _, t := range ts {
		if !reach[t.Pos] {
			return errors.New(errors.ErrCodeIncompleteTopology, "%s is not connected to the inlet", t)
		}
	}
	return nil
}
