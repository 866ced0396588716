package sizing

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSizingProperties checks the monotonicity and rounding guarantees over
// randomly drawn inputs.
func TestSizingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("diameter grows with flow", prop.ForAll(
		func(q, extra, dp float64) bool {
			d1, err1 := EquivalentDiameter(q, dp)
			d2, err2 := EquivalentDiameter(q+extra, dp)
			return err1 == nil && err2 == nil && d2 >= d1
		},
		gen.Float64Range(1, 100000),
		gen.Float64Range(0, 50000),
		gen.Float64Range(0.01, 5),
	))

	properties.Property("diameter shrinks with pressure drop", prop.ForAll(
		func(q, dp, extra float64) bool {
			d1, err1 := EquivalentDiameter(q, dp)
			d2, err2 := EquivalentDiameter(q, dp+extra)
			return err1 == nil && err2 == nil && d2 <= d1
		},
		gen.Float64Range(1, 100000),
		gen.Float64Range(0.01, 5),
		gen.Float64Range(0, 5),
	))

	properties.Property("rounded sides are ordered step multiples", prop.ForAll(
		func(d float64, ri int, step float64) bool {
			r := []float64{1, 2, 3, 4, 6, 8}[ri]
			rect, err := SizeRect(d, r, step)
			if err != nil {
				return false
			}
			return isMultiple(rect.Big, step) && isMultiple(rect.Small, step) && rect.Big >= rect.Small
		},
		gen.Float64Range(10, 3000),
		gen.IntRange(0, 5),
		gen.OneConstOf(25.0, 50.0, 100.0),
	))

	properties.Property("flat candidate meets the target", prop.ForAll(
		func(d float64, ri int) bool {
			r := []float64{1, 2, 3, 4, 6, 8}[ri]
			rect, err := SizeRect(d, r, DefaultStep)
			if err != nil {
				return false
			}
			if rect.Chosen != CandidateFlat {
				return true
			}
			de, err := RectEquivalentDiameter(rect.Big, rect.Small)
			return err == nil && de >= d
		},
		gen.Float64Range(10, 3000),
		gen.IntRange(0, 5),
	))

	properties.Property("reported De matches the rounded sides", prop.ForAll(
		func(d float64, ri int) bool {
			r := []float64{1, 2, 3, 4, 6, 8}[ri]
			rect, err := SizeRect(d, r, DefaultStep)
			if err != nil {
				return false
			}
			de, err := RectEquivalentDiameter(rect.Big, rect.Small)
			return err == nil && math.Abs(de-rect.De) < 1e-9
		},
		gen.Float64Range(10, 3000),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

func isMultiple(v, step float64) bool {
	q := v / step
	return math.Abs(q-math.Round(q)) < 1e-9
}
