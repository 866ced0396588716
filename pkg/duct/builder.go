package duct

import (
	"math"

	"github.com/matzehuels/ductwork/pkg/duct/sizing"
	"github.com/matzehuels/ductwork/pkg/errors"
)

// Defaults for a build.
const (
	DefaultPressureDrop = 0.1 // mmAq/m
	DefaultAspectRatio  = 2.0

	// FlowTolerance is the absolute difference (m³/h) above which inlet and
	// outlet totals are reported as imbalanced.
	FlowTolerance = 1e-6
)

// Params are the sizing targets of one build.
type Params struct {
	PressureDrop float64 `json:"pressure_drop" bson:"pressure_drop" toml:"pressure_drop"` // mmAq/m
	AspectRatio  float64 `json:"aspect_ratio" bson:"aspect_ratio" toml:"aspect_ratio"`    // b/a
	Step         float64 `json:"step" bson:"step" toml:"step"`                            // mm
}

// DefaultParams returns 0.1 mmAq/m, ratio 2 and a 50 mm step.
func DefaultParams() Params {
	return Params{
		PressureDrop: DefaultPressureDrop,
		AspectRatio:  DefaultAspectRatio,
		Step:         sizing.DefaultStep,
	}
}

// Validate rejects non-positive or unsupported values.
func (p Params) Validate() error {
	if err := errors.ValidatePositive("pressure drop", p.PressureDrop); err != nil {
		return err
	}
	if err := errors.ValidateAspectRatio(p.AspectRatio); err != nil {
		return err
	}
	if p.Step != 0 {
		return errors.ValidatePositive("step", p.Step)
	}
	return nil
}

func (p Params) step() float64 {
	if p.Step <= 0 {
		return sizing.DefaultStep
	}
	return p.Step
}

// Input is everything a builder needs: the terminal set and sizing targets.
type Input struct {
	Inlet   Terminal
	Outlets []Terminal
	Params  Params
}

// Terminals returns the inlet followed by the outlets.
func (in Input) Terminals() []Terminal {
	out := make([]Terminal, 0, len(in.Outlets)+1)
	out = append(out, in.Inlet)
	return append(out, in.Outlets...)
}

// Result is the output of one builder invocation.
type Result struct {
	Segments []Segment

	// Skipped counts segments dropped because their sizing call was rejected.
	Skipped int

	// Warnings holds non-fatal conditions such as FLOW_IMBALANCE.
	Warnings []error
}

// NetworkBuilder is a network-construction strategy.
//
// Build must be a pure function of its input: the same terminals and
// parameters always yield the same segments in the same order.
type NetworkBuilder interface {
	Name() string
	Build(in Input) (Result, error)
}

// RequireTopology checks that a build has something to connect.
// It fails with INCOMPLETE_TOPOLOGY when the inlet or every outlet is missing.
func RequireTopology(in Input) error {
	if !in.Inlet.IsInlet() {
		return errors.New(errors.ErrCodeIncompleteTopology, "no air inlet placed")
	}
	if len(in.Outlets) == 0 {
		return errors.New(errors.ErrCodeIncompleteTopology, "no air outlets placed")
	}
	for _, o := range in.Outlets {
		if o.IsInlet() {
			return errors.New(errors.ErrCodeIncompleteTopology, "more than one inlet at %v", o.Pos)
		}
	}
	return nil
}

// RequireInletFlow fails with INCOMPLETE_TOPOLOGY unless the inlet carries a
// positive flow.
func RequireInletFlow(in Input) error {
	if in.Inlet.Flow <= 0 || math.IsNaN(in.Inlet.Flow) {
		return errors.New(errors.ErrCodeIncompleteTopology, "inlet flow must be positive, got %g", in.Inlet.Flow)
	}
	return nil
}

// CheckBalance returns a FLOW_IMBALANCE warning when the outlet total differs
// from the inlet flow by more than FlowTolerance, or nil.
func CheckBalance(in Input) error {
	total := SumFlow(in.Outlets)
	if math.Abs(total-in.Inlet.Flow) > FlowTolerance {
		return errors.New(errors.ErrCodeFlowImbalance,
			"outlet total %.1f m³/h differs from inlet flow %.1f m³/h", total, in.Inlet.Flow)
	}
	return nil
}
