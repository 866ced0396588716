package relocate

import (
	"slices"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// Gesture is one interactive drag of a run, from pointer press to release.
//
// Pointer deltas arrive in meters and are accumulated; the run jumps
// whenever the accumulated offset crosses to another grid index. The
// network is updated in place during the gesture. Commit checks that the
// result is still axis-aligned and that every terminal connected before
// the drag is still connected; Cancel restores the state at Begin.
type Gesture struct {
	net      *duct.Network
	index    int
	axis     grid.Orientation
	before   []duct.Segment
	attached map[grid.Point]bool

	offset  float64 // meters along the drag axis
	applied int     // grid cells already applied
	report  Report
	done    bool
}

// Begin starts dragging the run at index.
func Begin(net *duct.Network, index int) (*Gesture, error) {
	segs := net.Segments()
	if index < 0 || index >= len(segs) {
		return nil, errors.New(errors.ErrCodeSegmentNotFound, "no segment at index %d", index)
	}
	return &Gesture{
		net:      net,
		index:    index,
		axis:     segs[index].Orientation,
		before:   segs,
		attached: reachableTerminals(net.Terminals(), segs),
		report:   Report{Index: index},
	}, nil
}

// Index returns the current position of the dragged run.
func (g *Gesture) Index() int { return g.index }

// Report returns the moves applied so far.
func (g *Gesture) Report() Report { return g.report }

// Drag feeds a pointer delta in meters. Only the component across the
// run's axis is used. It returns the move applied by this call, which is
// empty while the accumulated offset stays within the current cell.
func (g *Gesture) Drag(dx, dy float64) (Report, error) {
	if g.done {
		return Report{}, errors.New(errors.ErrCodeInvalidInput, "gesture already finished")
	}
	switch g.axis {
	case grid.Horizontal:
		g.offset += dy
	case grid.Vertical:
		g.offset += dx
	}
	target := grid.Snap(g.offset, g.net.CellSize())
	step := target - g.applied
	if step == 0 {
		return Report{Index: g.index}, nil
	}
	rep, err := Move(g.net, g.index, step)
	if err != nil {
		return Report{}, err
	}
	g.applied = target
	g.index = rep.Index
	g.report.add(rep)
	return rep, nil
}

// Commit ends the gesture. If the moved network breaks an invariant the
// state at Begin is restored and the error returned.
func (g *Gesture) Commit() (Report, error) {
	if g.done {
		return g.report, nil
	}
	g.done = true
	segs := g.net.Segments()
	if err := duct.CheckAxisAligned(segs); err != nil {
		g.net.Replace(g.before)
		return Report{}, errors.Wrap(errors.ErrCodeInternal, err, "drag produced a diagonal run")
	}
	now := reachableTerminals(g.net.Terminals(), segs)
	for p := range g.attached {
		if !now[p] {
			g.net.Replace(g.before)
			return Report{}, errors.New(errors.ErrCodeInternal, "drag disconnected terminal at %v", p)
		}
	}
	return g.report, nil
}

// Cancel ends the gesture and restores the runs as they were at Begin.
func (g *Gesture) Cancel() {
	if g.done {
		return
	}
	g.done = true
	g.net.Replace(g.before)
}

// reachableTerminals returns the terminal positions connected to the inlet.
func reachableTerminals(ts []duct.Terminal, segs []duct.Segment) map[grid.Point]bool {
	i := slices.IndexFunc(ts, duct.Terminal.IsInlet)
	if i < 0 {
		return nil
	}
	reach := duct.ReachablePoints(segs, ts[i].Pos)
	out := make(map[grid.Point]bool, len(ts))
	for _, t := range ts {
		if reach[t.Pos] {
			out[t.Pos] = true
		}
	}
	return out
}

// Shift drags the run at index by meters across its axis as one committed
// gesture. On error the network is left as it was.
func Shift(net *duct.Network, index int, meters float64) (Report, error) {
	g, err := Begin(net, index)
	if err != nil {
		return Report{}, err
	}
	if _, err := g.Drag(meters, meters); err != nil {
		g.Cancel()
		return Report{}, err
	}
	return g.Commit()
}
