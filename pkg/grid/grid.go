package grid

import (
	"fmt"
	"math"
)

// DefaultCellSize is the edge length of one grid cell in meters.
const DefaultCellSize = 0.5

// Point is a position in grid-index coordinates.
type Point struct {
	X int `json:"x" bson:"x" toml:"x"`
	Y int `json:"y" bson:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// String formats the point as "(x,y)".
func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Manhattan returns the rectilinear distance between p and q.
func Manhattan(p, q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// Less orders points by X, then Y.
func Less(p, q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

// Compare is the three-way form of [Less], for slices.SortFunc.
func Compare(p, q Point) int {
	switch {
	case Less(p, q):
		return -1
	case Less(q, p):
		return 1
	}
	return 0
}

// Orientation is the axis a segment runs along.
type Orientation int

const (
	Horizontal Orientation = iota // constant Y
	Vertical                      // constant X
)

// String returns "horizontal" or "vertical".
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// MarshalText encodes the orientation by name.
func (o Orientation) MarshalText() ([]byte, error) {
	switch o {
	case Horizontal, Vertical:
		return []byte(o.String()), nil
	}
	return nil, fmt.Errorf("invalid orientation %d", int(o))
}

// UnmarshalText decodes "horizontal" or "vertical".
func (o *Orientation) UnmarshalText(b []byte) error {
	switch string(b) {
	case "horizontal":
		*o = Horizontal
	case "vertical":
		*o = Vertical
	default:
		return fmt.Errorf("invalid orientation %q", string(b))
	}
	return nil
}

// OrientationOf reports the orientation of the segment a-b.
// ok is false for diagonal or degenerate (zero-length) segments.
func OrientationOf(a, b Point) (o Orientation, ok bool) {
	switch {
	case a == b:
		return Horizontal, false
	case a.Y == b.Y:
		return Horizontal, true
	case a.X == b.X:
		return Vertical, true
	}
	return Horizontal, false
}

// Direction is a compass direction on the grid. Y grows toward South, as on
// a drawing surface.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions lists every Direction in declaration order.
var Directions = [...]Direction{North, South, East, West}

// String returns the lower-case direction name.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Delta returns the unit step for d.
func (d Direction) Delta() Point {
	switch d {
	case North:
		return Point{Y: -1}
	case South:
		return Point{Y: 1}
	case East:
		return Point{X: 1}
	case West:
		return Point{X: -1}
	}
	panic(fmt.Sprintf("grid: unknown direction %d", int(d)))
}

// Axis returns the orientation of movement along d.
func (d Direction) Axis() Orientation {
	switch d {
	case North, South:
		return Vertical
	case East, West:
		return Horizontal
	}
	panic(fmt.Sprintf("grid: unknown direction %d", int(d)))
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	panic(fmt.Sprintf("grid: unknown direction %d", int(d)))
}

// DirectionOf returns the direction from a to b for axis-aligned pairs.
func DirectionOf(a, b Point) (Direction, bool) {
	switch {
	case a == b:
		return North, false
	case a.X == b.X && b.Y < a.Y:
		return North, true
	case a.X == b.X:
		return South, true
	case a.Y == b.Y && b.X > a.X:
		return East, true
	case a.Y == b.Y:
		return West, true
	}
	return North, false
}

// Side classifies a point's horizontal position relative to a reference.
type Side int

const (
	SideCenter Side = iota // same X as the reference
	SideWest
	SideEast
)

// String returns "center", "west" or "east".
func (s Side) String() string {
	switch s {
	case SideCenter:
		return "center"
	case SideWest:
		return "west"
	case SideEast:
		return "east"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// SideOf reports on which side of ref the point p lies.
func SideOf(ref, p Point) Side {
	switch {
	case p.X < ref.X:
		return SideWest
	case p.X > ref.X:
		return SideEast
	}
	return SideCenter
}

// Snap converts a model coordinate in meters to the nearest grid index.
func Snap(meters, cellSize float64) int {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return int(math.Round(meters / cellSize))
}

// ToModel converts a grid index to meters.
func ToModel(index int, cellSize float64) float64 {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return float64(index) * cellSize
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
