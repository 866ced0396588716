package steiner

import (
	"slices"

	"github.com/matzehuels/ductwork/pkg/grid"
)

// HananGrid returns every intersection of the vertical and horizontal lines
// through the given points, excluding the points themselves, ordered by X
// then Y.
func HananGrid(points []grid.Point) []grid.Point {
	xs := make([]int, 0, len(points))
	ys := make([]int, 0, len(points))
	taken := make(map[grid.Point]bool, len(points))
	for _, p := range points {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
		taken[p] = true
	}
	slices.Sort(xs)
	slices.Sort(ys)
	xs = slices.Compact(xs)
	ys = slices.Compact(ys)

	out := make([]grid.Point, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			if p := grid.Pt(x, y); !taken[p] {
				out = append(out, p)
			}
		}
	}
	return out
}
