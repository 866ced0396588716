package relocate

import (
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// Report summarizes one or more applied moves.
type Report struct {
	// Delta is the total applied displacement in grid cells.
	Delta grid.Point `json:"delta"`
	// Index is the position of the dragged run in the updated list.
	Index int `json:"index"`

	Moved     int `json:"moved"`     // runs translated or stretched
	Held      int `json:"held"`      // runs with both ends on terminals
	Split     int `json:"split"`     // runs replaced by an L
	Collapsed int `json:"collapsed"` // runs shrunk to zero length and removed
}

func (r *Report) add(o Report) {
	r.Delta = r.Delta.Add(o.Delta)
	r.Index = o.Index
	r.Moved += o.Moved
	r.Held += o.Held
	r.Split += o.Split
	r.Collapsed += o.Collapsed
}

// Displacement returns the grid offset for dragging a run of orientation o
// by delta cells: vertical for horizontal runs, horizontal for vertical runs.
func Displacement(o grid.Orientation, delta int) grid.Point {
	switch o {
	case grid.Horizontal:
		return grid.Pt(0, delta)
	case grid.Vertical:
		return grid.Pt(delta, 0)
	}
	panic("relocate: unknown orientation")
}

// Move drags the run at index by delta grid cells across its own axis and
// replaces the network's runs with the result.
func Move(net *duct.Network, index, delta int) (Report, error) {
	segs, rep, err := Apply(net.Segments(), duct.FixedPoints(net.Terminals()), index, delta)
	if err != nil {
		return Report{}, err
	}
	net.Replace(segs)
	return rep, nil
}

// Apply is the pure form of [Move]: it returns the updated run list and
// leaves segs untouched. Runs outside the dragged run's connected
// component keep their position; split runs are replaced in place.
func Apply(segs []duct.Segment, fixed map[grid.Point]bool, index, delta int) ([]duct.Segment, Report, error) {
	if index < 0 || index >= len(segs) {
		return nil, Report{}, errors.New(errors.ErrCodeSegmentNotFound, "no segment at index %d", index)
	}
	rep := Report{Index: index}
	if delta == 0 {
		return append([]duct.Segment(nil), segs...), rep, nil
	}

	dragged := segs[index]
	d := Displacement(dragged.Orientation, delta)
	rep.Delta = d

	inComponent := make(map[int]bool, len(segs))
	for _, i := range duct.Component(segs, index) {
		inComponent[i] = true
	}

	out := make([]duct.Segment, 0, len(segs)+4)
	for i, s := range segs {
		if i == index {
			rep.Index = len(out)
		}
		if !inComponent[i] {
			out = append(out, s)
			continue
		}
		fa, fb := fixed[s.A], fixed[s.B]
		switch {
		case fa && fb:
			rep.Held++
			out = append(out, s)
		case !fa && !fb:
			s.A, s.B = s.A.Add(d), s.B.Add(d)
			rep.Moved++
			out = append(out, s)
		default:
			runs, kind := stretch(s, fa, d)
			switch kind {
			case stretched:
				rep.Moved++
			case collapsed:
				rep.Collapsed++
			case split:
				rep.Split++
				if i == index {
					rep.Index = len(out) + parallelLeg(runs, dragged.Orientation)
				}
			}
			out = append(out, runs...)
		}
	}
	return out, rep, nil
}

type outcome int

const (
	stretched outcome = iota
	collapsed
	split
)

// stretch moves the free end of s by d. fixedA tells which end is pinned.
func stretch(s duct.Segment, fixedA bool, d grid.Point) ([]duct.Segment, outcome) {
	f, m := s.B, s.A
	if fixedA {
		f, m = s.A, s.B
	}
	moved := m.Add(d)
	if moved == f {
		return nil, collapsed
	}
	if _, ok := grid.OrientationOf(f, moved); ok {
		t := s
		if fixedA {
			t.B = moved
		} else {
			t.A = moved
		}
		return []duct.Segment{t}, stretched
	}

	corner := grid.Pt(f.X, moved.Y)
	if d.X != 0 {
		corner = grid.Pt(moved.X, f.Y)
	}
	// The jog always starts at the pinned end, so it lies beside the
	// terminal and never runs back over the upstream run.
	if fixedA {
		return []duct.Segment{leg(s, f, corner), leg(s, corner, moved)}, split
	}
	// Keep the run's direction: A end first.
	return []duct.Segment{leg(s, moved, corner), leg(s, corner, f)}, split
}

// leg builds one side of an L carrying the flow and size of orig.
func leg(orig duct.Segment, a, b grid.Point) duct.Segment {
	o, _ := grid.OrientationOf(a, b)
	s := duct.Segment{A: a, B: b, Orientation: o}
	s.CopySize(orig)
	return s
}

// parallelLeg returns which of the two legs runs along o.
func parallelLeg(legs []duct.Segment, o grid.Orientation) int {
	if len(legs) == 2 && legs[1].Orientation == o {
		return 1
	}
	return 0
}
