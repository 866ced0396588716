package duct

import (
	"math"

	"github.com/matzehuels/ductwork/pkg/duct/sizing"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// Segment is an axis-aligned duct run between two grid points.
//
// A is the upstream end for segments produced by a builder. Width and Height
// are the rounded rectangular sides (larger first) and Diameter is the
// circular equivalent rounded to the sizing step. Unsized segments (topology
// only) have zero dimensions and an empty Label.
type Segment struct {
	A           grid.Point       `json:"a" bson:"a"`
	B           grid.Point       `json:"b" bson:"b"`
	Orientation grid.Orientation `json:"orientation" bson:"orientation"`
	Flow        float64          `json:"flow" bson:"flow"`
	Width       float64          `json:"width_mm" bson:"width_mm"`
	Height      float64          `json:"height_mm" bson:"height_mm"`
	Diameter    float64          `json:"diameter_mm,omitempty" bson:"diameter_mm,omitempty"`
	Label       string           `json:"label,omitempty" bson:"label,omitempty"`
}

// NewSegment creates an unsized segment from a to b.
// It fails with INVALID_INPUT for diagonal or zero-length runs.
func NewSegment(a, b grid.Point) (Segment, error) {
	o, ok := grid.OrientationOf(a, b)
	if !ok {
		return Segment{}, errors.New(errors.ErrCodeInvalidInput, "segment %v-%v is not axis-aligned", a, b)
	}
	return Segment{A: a, B: b, Orientation: o}, nil
}

// NewSizedSegment creates a segment carrying flow and sizes it with p.
// A non-positive flow yields INVALID_INPUT; callers skip that segment.
func NewSizedSegment(a, b grid.Point, flow float64, p Params) (Segment, error) {
	s, err := NewSegment(a, b)
	if err != nil {
		return Segment{}, err
	}
	s.Flow = flow
	if err := s.Resize(p); err != nil {
		return Segment{}, err
	}
	return s, nil
}

// Resize recomputes the cross-section from the segment's own flow.
func (s *Segment) Resize(p Params) error {
	res, err := sizing.Size(s.Flow, p.PressureDrop, p.AspectRatio, p.step())
	if err != nil {
		return err
	}
	s.Width = res.Rect.Big
	s.Height = res.Rect.Small
	s.Diameter = res.RoundedDiameter
	s.Label = res.Label()
	return nil
}

// CopySize copies the cross-section and flow of src.
func (s *Segment) CopySize(src Segment) {
	s.Flow = src.Flow
	s.Width = src.Width
	s.Height = src.Height
	s.Diameter = src.Diameter
	s.Label = src.Label
}

// Sized reports whether the segment carries a cross-section.
func (s Segment) Sized() bool { return s.Width > 0 && s.Height > 0 }

// Length returns the run length in grid cells.
func (s Segment) Length() int { return grid.Manhattan(s.A, s.B) }

// LengthMeters returns the run length for the given cell size.
func (s Segment) LengthMeters(cellSize float64) float64 {
	return grid.ToModel(s.Length(), cellSize)
}

// Endpoints returns both endpoints.
func (s Segment) Endpoints() [2]grid.Point { return [2]grid.Point{s.A, s.B} }

// Has reports whether p is one of the segment's endpoints.
func (s Segment) Has(p grid.Point) bool { return s.A == p || s.B == p }

// Other returns the endpoint opposite to p.
func (s Segment) Other(p grid.Point) grid.Point {
	if s.A == p {
		return s.B
	}
	return s.A
}

// Touches reports whether s and t share an endpoint.
func (s Segment) Touches(t Segment) bool {
	return s.Has(t.A) || s.Has(t.B)
}

// Contains reports whether p lies on the segment, endpoints included.
func (s Segment) Contains(p grid.Point) bool {
	switch s.Orientation {
	case grid.Horizontal:
		return p.Y == s.A.Y && between(p.X, s.A.X, s.B.X)
	case grid.Vertical:
		return p.X == s.A.X && between(p.Y, s.A.Y, s.B.Y)
	}
	return false
}

// Interior reports whether p lies strictly between the endpoints.
func (s Segment) Interior(p grid.Point) bool {
	return s.Contains(p) && !s.Has(p)
}

// Key returns an orientation-independent identity of the run: endpoints
// ordered so that A-B and B-A compare equal.
func (s Segment) Key() [2]grid.Point {
	if grid.Less(s.B, s.A) {
		return [2]grid.Point{s.B, s.A}
	}
	return [2]grid.Point{s.A, s.B}
}

// Normalized returns a copy with endpoints in Key order.
func (s Segment) Normalized() Segment {
	k := s.Key()
	s.A, s.B = k[0], k[1]
	return s
}

// PerimeterMeters returns the rectangular perimeter in meters.
func (s Segment) PerimeterMeters() float64 {
	return 2 * (s.Width + s.Height) / 1000
}

// CircumferenceMeters returns the circular-equivalent circumference in meters.
func (s Segment) CircumferenceMeters() float64 {
	return math.Pi * s.Diameter / 1000
}

func between(v, a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return v >= a && v <= b
}
