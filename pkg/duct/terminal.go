package duct

import (
	"fmt"

	"github.com/matzehuels/ductwork/pkg/grid"
)

// Kind distinguishes the air source from the air diffusers.
type Kind int

const (
	// KindInlet is the single fixed air source.
	KindInlet Kind = iota
	// KindOutlet is an air diffuser.
	KindOutlet
)

// String returns "inlet" or "outlet".
func (k Kind) String() string {
	switch k {
	case KindInlet:
		return "inlet"
	case KindOutlet:
		return "outlet"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindInlet, KindOutlet:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid terminal kind %d", int(k))
}

// UnmarshalText decodes "inlet" or "outlet".
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "inlet":
		*k = KindInlet
	case "outlet":
		*k = KindOutlet
	default:
		return fmt.Errorf("invalid terminal kind %q", string(b))
	}
	return nil
}

// Terminal is an inlet or outlet placed on the grid.
// For the inlet, Flow is the supplied airflow; for outlets it is the
// assigned share (m³/h).
type Terminal struct {
	Pos  grid.Point `json:"pos" bson:"pos"`
	Kind Kind       `json:"kind" bson:"kind"`
	Flow float64    `json:"flow" bson:"flow"`
}

// IsInlet reports whether t is the air source.
func (t Terminal) IsInlet() bool { return t.Kind == KindInlet }

// String formats the terminal as "outlet(3,4) 250 m³/h".
func (t Terminal) String() string {
	return fmt.Sprintf("%s%s %g m³/h", t.Kind, t.Pos, t.Flow)
}

// SumFlow returns the total flow of the given terminals.
func SumFlow(ts []Terminal) float64 {
	var s float64
	for _, t := range ts {
		s += t.Flow
	}
	return s
}
