package steiner

import (
	"container/heap"

	"github.com/matzehuels/ductwork/pkg/grid"
)

// Edge is a spanning-tree edge between two indices of the point set.
// U is the endpoint that was already in the tree when the edge was added.
type Edge struct {
	U, V   int
	Weight int
}

// MST computes a Manhattan minimum spanning tree over points with Prim's
// algorithm, grown from points[0]. It returns the edges in the order they
// were added and the total length. Equal-weight candidates are taken in
// index order, so the result is deterministic.
func MST(points []grid.Point) ([]Edge, int) {
	n := len(points)
	if n < 2 {
		return nil, 0
	}
	inTree := make([]bool, n)
	tree := make([]Edge, 0, n-1)
	total := 0

	pq := &edgePQ{}
	heap.Init(pq)
	push := func(u int) {
		inTree[u] = true
		for v := range points {
			if !inTree[v] {
				heap.Push(pq, Edge{U: u, V: v, Weight: grid.Manhattan(points[u], points[v])})
			}
		}
	}
	push(0)

	for pq.Len() > 0 && len(tree) < n-1 {
		e := heap.Pop(pq).(Edge)
		if inTree[e.V] {
			continue
		}
		tree = append(tree, e)
		total += e.Weight
		push(e.V)
	}
	return tree, total
}

// MSTLength returns only the total length of [MST].
func MSTLength(points []grid.Point) int {
	_, total := MST(points)
	return total
}

// edgePQ is a min-heap of edges ordered by weight, then by indices.
type edgePQ []Edge

func (pq edgePQ) Len() int { return len(pq) }

func (pq edgePQ) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.U != b.U {
		return a.U < b.U
	}
	return a.V < b.V
}

func (pq edgePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *edgePQ) Push(x any) { *pq = append(*pq, x.(Edge)) }

func (pq *edgePQ) Pop() any {
	old := *pq
	n := len(old)
	e := old[n-1]
	*pq = old[:n-1]
	return e
}
