package sizing

import (
	"fmt"
	"math"

	"github.com/matzehuels/ductwork/pkg/errors"
)

const (
	// DefaultStep is the rounding increment for duct dimensions in mm.
	DefaultStep = 50.0

	// frictionCoefficient is the empirical constant C of the diameter relation.
	frictionCoefficient = 3.295e-10

	flowExponent     = 1.9
	diameterExponent = 0.199

	rectCoefficient  = 1.30
	rectAreaExponent = 0.625
	rectSumExponent  = 0.25
)

// EquivalentDiameter returns the circular duct diameter (mm) that carries
// flow (m³/h) at the given pressure-drop rate (mmAq/m).
func EquivalentDiameter(flow, dropRate float64) (float64, error) {
	if err := errors.ValidatePositive("flow", flow); err != nil {
		return 0, err
	}
	if err := errors.ValidatePositive("pressure drop", dropRate); err != nil {
		return 0, err
	}
	return 1000 * math.Pow(frictionCoefficient*math.Pow(flow, flowExponent)/dropRate, diameterExponent), nil
}

// RoundUpToStep rounds x up to the next multiple of step.
// A non-positive step falls back to DefaultStep.
func RoundUpToStep(x, step float64) float64 {
	step = normStep(step)
	return math.Ceil(x/step) * step
}

// RoundDownToStep rounds x down to a multiple of step, never below one step.
func RoundDownToStep(x, step float64) float64 {
	step = normStep(step)
	return math.Max(math.Floor(x/step)*step, step)
}

// RectEquivalentDiameter returns the circular diameter with the same
// friction loss as an a×b rectangular duct.
func RectEquivalentDiameter(a, b float64) (float64, error) {
	if err := errors.ValidatePositive("rectangle side", a); err != nil {
		return 0, err
	}
	if err := errors.ValidatePositive("rectangle side", b); err != nil {
		return 0, err
	}
	return rectCoefficient * math.Pow(a*b, rectAreaExponent) / math.Pow(a+b, rectSumExponent), nil
}

// Candidate identifies which rounding strategy produced a Rect.
type Candidate int

const (
	// CandidateFlat rounds the smaller side up and the larger side down.
	CandidateFlat Candidate = iota + 1
	// CandidateUp rounds both sides up.
	CandidateUp
)

// Rect is a rounded rectangular cross-section.
type Rect struct {
	Big   float64 // larger side after rounding (mm)
	Small float64 // smaller side after rounding (mm)

	// De is the equivalent diameter of Big×Small.
	De float64

	// TheoBig and TheoSmall are the unrounded sides for the requested ratio.
	TheoBig   float64
	TheoSmall float64

	Chosen Candidate
}

// SizeRect derives a rounded rectangle whose equivalent diameter meets
// target for the aspect ratio r = b/a.
//
// The flat candidate (smaller side up, larger side down) is taken when its
// equivalent diameter still reaches the target; otherwise both sides are
// rounded up.
func SizeRect(target, r, step float64) (Rect, error) {
	if err := errors.ValidatePositive("diameter", target); err != nil {
		return Rect{}, err
	}
	if err := errors.ValidatePositive("aspect ratio", r); err != nil {
		return Rect{}, err
	}
	if err := errors.ValidatePositive("step", step); err != nil {
		return Rect{}, err
	}

	aTheo := target * math.Pow(1+r, rectSumExponent) / (rectCoefficient * math.Pow(r, rectAreaExponent))
	bTheo := r * aTheo
	theoBig, theoSmall := math.Max(aTheo, bTheo), math.Min(aTheo, bTheo)

	smallUp := RoundUpToStep(theoSmall, step)
	bigDown := RoundDownToStep(theoBig, step)
	de1, err := RectEquivalentDiameter(smallUp, bigDown)
	if err != nil {
		return Rect{}, err
	}

	out := Rect{TheoBig: theoBig, TheoSmall: theoSmall}
	if de1 >= target {
		out.Big, out.Small = math.Max(smallUp, bigDown), math.Min(smallUp, bigDown)
		out.De = de1
		out.Chosen = CandidateFlat
		return out, nil
	}

	aUp := RoundUpToStep(aTheo, step)
	bUp := RoundUpToStep(bTheo, step)
	de2, err := RectEquivalentDiameter(aUp, bUp)
	if err != nil {
		return Rect{}, err
	}
	out.Big, out.Small = math.Max(aUp, bUp), math.Min(aUp, bUp)
	out.De = de2
	out.Chosen = CandidateUp
	return out, nil
}

// Result is the complete sizing of one duct run.
type Result struct {
	Flow     float64 // m³/h
	DropRate float64 // mmAq/m

	Diameter        float64 // exact equivalent circular diameter (mm)
	RoundedDiameter float64 // Diameter rounded up to the step (mm)

	Rect Rect
}

// Size computes the circular and rectangular sizes for a flow.
func Size(flow, dropRate, aspectRatio, step float64) (Result, error) {
	d, err := EquivalentDiameter(flow, dropRate)
	if err != nil {
		return Result{}, err
	}
	rect, err := SizeRect(d, aspectRatio, step)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Flow:            flow,
		DropRate:        dropRate,
		Diameter:        d,
		RoundedDiameter: RoundUpToStep(d, step),
		Rect:            rect,
	}, nil
}

// Label formats the result as "BIGxSMALL (ØD)".
func (r Result) Label() string {
	return fmt.Sprintf("%.0fx%.0f (Ø%.0f)", r.Rect.Big, r.Rect.Small, r.RoundedDiameter)
}

func normStep(step float64) float64 {
	if step <= 0 || math.IsNaN(step) {
		return DefaultStep
	}
	return step
}
