package duct

import (
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
	"github.com/matzehuels/ductwork/pkg/load"
)

// Network is the single owner of the terminal set and the segment list.
//
// Every edit of the terminal set clears the segments; the network must then
// be rebuilt. Network is not safe for concurrent use.
type Network struct {
	cellSize  float64
	terminals []Terminal
	segments  []Segment
	logger    *log.Logger
}

// New creates an empty network on a grid of the given cell size (meters).
// A non-positive cell size falls back to [grid.DefaultCellSize].
func New(cellSize float64) *Network {
	if cellSize <= 0 {
		cellSize = grid.DefaultCellSize
	}
	return &Network{cellSize: cellSize, logger: log.Default()}
}

// FromParts restores a network from stored terminals and segments.
// The segments are taken as-is; no rebuild is performed.
func FromParts(cellSize float64, terminals []Terminal, segments []Segment) (*Network, error) {
	n := New(cellSize)
	inlets := 0
	for _, t := range terminals {
		if t.IsInlet() {
			inlets++
		}
	}
	if inlets > 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "network has %d inlets", inlets)
	}
	n.terminals = slices.Clone(terminals)
	n.segments = slices.Clone(segments)
	return n, nil
}

// SetLogger replaces the logger used for build warnings.
func (n *Network) SetLogger(l *log.Logger) {
	if l != nil {
		n.logger = l
	}
}

// CellSize returns the grid cell edge length in meters.
func (n *Network) CellSize() float64 { return n.cellSize }

// Terminals returns a copy of all terminals in placement order.
func (n *Network) Terminals() []Terminal { return slices.Clone(n.terminals) }

// Segments returns a copy of the current segment list.
func (n *Network) Segments() []Segment { return slices.Clone(n.segments) }

// Inlet returns the inlet, if one is placed.
func (n *Network) Inlet() (Terminal, bool) {
	for _, t := range n.terminals {
		if t.IsInlet() {
			return t, true
		}
	}
	return Terminal{}, false
}

// Outlets returns the outlets in placement order.
func (n *Network) Outlets() []Terminal {
	var out []Terminal
	for _, t := range n.terminals {
		if !t.IsInlet() {
			out = append(out, t)
		}
	}
	return out
}

// SetInlet places or moves the inlet and sets its flow. Moving it onto an
// outlet fails with INVALID_INPUT and leaves the network unchanged.
func (n *Network) SetInlet(p grid.Point, flow float64) error {
	if t, ok := n.TerminalAt(p); ok && !t.IsInlet() {
		return errors.New(errors.ErrCodeInvalidInput, "cell %v is already occupied", p)
	}
	n.clearSegments()
	for i, t := range n.terminals {
		if t.IsInlet() {
			n.terminals[i].Pos = p
			n.terminals[i].Flow = flow
			return nil
		}
	}
	n.terminals = append(n.terminals, Terminal{Pos: p, Kind: KindInlet, Flow: flow})
	return nil
}

// AddOutlet places an outlet. Placing a second terminal on an occupied
// cell fails with INVALID_INPUT.
func (n *Network) AddOutlet(p grid.Point, flow float64) error {
	if _, ok := n.TerminalAt(p); ok {
		return errors.New(errors.ErrCodeInvalidInput, "cell %v is already occupied", p)
	}
	n.clearSegments()
	n.terminals = append(n.terminals, Terminal{Pos: p, Kind: KindOutlet, Flow: flow})
	return nil
}

// Place adds a terminal the way an interactive click does: the first
// placement becomes the inlet, every later one an outlet.
func (n *Network) Place(p grid.Point, flow float64) (Terminal, error) {
	if _, ok := n.Inlet(); !ok {
		if err := n.SetInlet(p, flow); err != nil {
			return Terminal{}, err
		}
		t, _ := n.Inlet()
		return t, nil
	}
	if err := n.AddOutlet(p, flow); err != nil {
		return Terminal{}, err
	}
	return n.terminals[len(n.terminals)-1], nil
}

// Undo removes the most recently placed terminal.
func (n *Network) Undo() (Terminal, bool) {
	if len(n.terminals) == 0 {
		return Terminal{}, false
	}
	last := n.terminals[len(n.terminals)-1]
	n.terminals = n.terminals[:len(n.terminals)-1]
	n.clearSegments()
	return last, true
}

// Remove deletes the terminal at p.
func (n *Network) Remove(p grid.Point) error {
	i := n.indexOf(p)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "no terminal at %v", p)
	}
	n.terminals = slices.Delete(n.terminals, i, i+1)
	n.clearSegments()
	return nil
}

// SetFlow changes the flow of the terminal at p.
func (n *Network) SetFlow(p grid.Point, flow float64) error {
	i := n.indexOf(p)
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "no terminal at %v", p)
	}
	n.terminals[i].Flow = flow
	n.clearSegments()
	return nil
}

// Clear removes every terminal and segment.
func (n *Network) Clear() {
	n.terminals = nil
	n.segments = nil
}

// DistributeEqual assigns every outlet the inlet flow divided by the
// number of outlets.
func (n *Network) DistributeEqual() error {
	in, ok := n.Inlet()
	if !ok {
		return errors.New(errors.ErrCodeIncompleteTopology, "no air inlet placed")
	}
	shares, err := load.DistributeEqual(in.Flow, len(n.terminals)-1)
	if err != nil {
		return err
	}
	k := 0
	for i := range n.terminals {
		if !n.terminals[i].IsInlet() {
			n.terminals[i].Flow = shares[k]
			k++
		}
	}
	n.clearSegments()
	return nil
}

// RemainingFlow is the inlet flow not yet assigned to an outlet.
// It is negative when the outlets are over-assigned.
func (n *Network) RemainingFlow() float64 {
	in, _ := n.Inlet()
	return in.Flow - SumFlow(n.Outlets())
}

// RemainingFlowExcept is [Network.RemainingFlow] ignoring the outlet at p,
// i.e. the flow still available when that outlet is being edited.
func (n *Network) RemainingFlowExcept(p grid.Point) float64 {
	rest := n.RemainingFlow()
	if t, ok := n.TerminalAt(p); ok && !t.IsInlet() {
		rest += t.Flow
	}
	return rest
}

// TerminalAt returns the terminal placed exactly at p.
func (n *Network) TerminalAt(p grid.Point) (Terminal, bool) {
	if i := n.indexOf(p); i >= 0 {
		return n.terminals[i], true
	}
	return Terminal{}, false
}

// Input assembles the builder input for the current terminal set.
func (n *Network) Input(p Params) Input {
	in, _ := n.Inlet()
	return Input{Inlet: in, Outlets: n.Outlets(), Params: p}
}

// Rebuild replaces the segments with the output of b.
//
// A fatal build error leaves the previous segments untouched. Warnings
// (flow imbalance, skipped segments) are logged and returned in the result.
func (n *Network) Rebuild(b NetworkBuilder, p Params) (Result, error) {
	res, err := b.Build(n.Input(p))
	if err != nil {
		return Result{}, err
	}
	for _, w := range res.Warnings {
		n.logger.Warn("build warning", "builder", b.Name(), "code", errors.GetCode(w), "err", errors.UserMessage(w))
	}
	if res.Skipped > 0 {
		n.logger.Warn("segments skipped", "builder", b.Name(), "count", res.Skipped)
	}
	n.segments = slices.Clone(res.Segments)
	n.logger.Debug("network rebuilt", "builder", b.Name(), "segments", len(n.segments))
	return res, nil
}

// Replace swaps in an externally edited segment list.
func (n *Network) Replace(segs []Segment) {
	n.segments = slices.Clone(segs)
}

// SegmentAt returns the index of the segment closest to the model-space
// point (x, y), provided it lies within tol meters. It returns -1 if no
// segment is close enough.
func (n *Network) SegmentAt(x, y, tol float64) int {
	best, bestDist := -1, math.Inf(1)
	for i, s := range n.segments {
		d := distanceToSegment(x, y, s, n.cellSize)
		if d <= tol && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Material estimates the sheet area of the current network.
func (n *Network) Material() Material {
	return EstimateMaterial(n.segments, n.cellSize)
}

func (n *Network) indexOf(p grid.Point) int {
	return slices.IndexFunc(n.terminals, func(t Terminal) bool { return t.Pos == p })
}

func (n *Network) clearSegments() { n.segments = nil }

func distanceToSegment(x, y float64, s Segment, cell float64) float64 {
	ax, ay := grid.ToModel(s.A.X, cell), grid.ToModel(s.A.Y, cell)
	bx, by := grid.ToModel(s.B.X, cell), grid.ToModel(s.B.Y, cell)
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(x-ax, y-ay)
	}
	t := ((x-ax)*dx + (y-ay)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(x-(ax+t*dx), y-(ay+t*dy))
}
