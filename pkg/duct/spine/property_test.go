package spine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// TestBuildProperties checks the tree invariants over random layouts.
func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150

	properties := gopter.NewProperties(parameters)

	layout := func(xs, ys []int, n int) duct.Input {
		in := duct.Input{Inlet: inlet(0, 0, 0), Params: duct.DefaultParams()}
		seen := map[grid.Point]bool{in.Inlet.Pos: true}
		for i := 0; i < n; i++ {
			p := grid.Pt(xs[i], ys[i])
			if seen[p] {
				continue
			}
			seen[p] = true
			in.Outlets = append(in.Outlets, outlet(p.X, p.Y, 150))
		}
		in.Inlet.Flow = duct.SumFlow(in.Outlets)
		return in
	}

	properties.Property("every outlet is connected by axis-aligned runs", prop.ForAll(
		func(xs, ys []int, n int) bool {
			in := layout(xs, ys, n)
			if len(in.Outlets) == 0 {
				return true
			}
			res, err := New().Build(in)
			if err != nil {
				return false
			}
			return duct.CheckAxisAligned(res.Segments) == nil &&
				duct.CheckConnected(in.Terminals(), res.Segments) == nil &&
				res.Skipped == 0 && len(res.Warnings) == 0
		},
		gen.SliceOfN(8, gen.IntRange(-12, 12)),
		gen.SliceOfN(8, gen.IntRange(-12, 12)),
		gen.IntRange(1, 8),
	))

	properties.Property("spine flow never grows downstream", prop.ForAll(
		func(xs, ys []int, n int) bool {
			in := layout(xs, ys, n)
			if len(in.Outlets) == 0 {
				return true
			}
			res, err := New().Build(in)
			if err != nil {
				return false
			}
			row := in.Inlet.Pos.Y
			upstream := map[grid.Point]float64{}
			for _, s := range res.Segments {
				if s.A.Y != row || s.B.Y != row {
					continue
				}
				if q, ok := upstream[s.A]; ok && s.Flow > q {
					return false
				}
				upstream[s.B] = s.Flow
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(-12, 12)),
		gen.SliceOfN(8, gen.IntRange(-12, 12)),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
