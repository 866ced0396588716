package relocate

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/spine"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// TestMoveProperties drags random runs of random spine networks and checks
// that the result stays axis-aligned and connected.
func TestMoveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150

	properties := gopter.NewProperties(parameters)

	properties.Property("moves keep runs orthogonal and terminals connected", prop.ForAll(
		func(xs, ys []int, pick, delta int) bool {
			net := duct.New(grid.DefaultCellSize)
			net.SetInlet(grid.Pt(0, 0), 0)
			for i := range xs {
				_ = net.AddOutlet(grid.Pt(xs[i], ys[i]), 100)
			}
			if len(net.Outlets()) == 0 {
				return true
			}
			net.SetInlet(grid.Pt(0, 0), duct.SumFlow(net.Outlets()))
			if _, err := net.Rebuild(spine.New(), duct.DefaultParams()); err != nil {
				return false
			}
			segs := net.Segments()
			if len(segs) == 0 {
				return true
			}
			if _, err := Move(net, pick%len(segs), delta); err != nil {
				return false
			}
			moved := net.Segments()
			return duct.CheckAxisAligned(moved) == nil &&
				duct.CheckConnected(net.Terminals(), moved) == nil
		},
		gen.SliceOfN(5, gen.IntRange(-8, 8)),
		gen.SliceOfN(5, gen.IntRange(-8, 8)),
		gen.IntRange(0, 100),
		gen.IntRange(-5, 5),
	))

	properties.TestingRun(t)
}
