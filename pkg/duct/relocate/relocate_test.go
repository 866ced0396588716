package relocate

import (
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/spine"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// riserNetwork is an inlet feeding one outlet through a spine run and a
// riser: (0,0)-(4,0) and (4,0)-(4,3).
func riserNetwork(t *testing.T) *duct.Network {
	t.Helper()
	net := duct.New(grid.DefaultCellSize)
	net.SetLogger(log.New(io.Discard))
	net.SetInlet(grid.Pt(0, 0), 500)
	if err := net.AddOutlet(grid.Pt(4, 3), 500); err != nil {
		t.Fatal(err)
	}
	if _, err := net.Rebuild(spine.New(), duct.DefaultParams()); err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}
	return net
}

func keys(segs []duct.Segment) [][2]grid.Point {
	out := make([][2]grid.Point, len(segs))
	for i, s := range segs {
		out[i] = [2]grid.Point{s.A, s.B}
	}
	return out
}

func TestMoveRiserSideways(t *testing.T) {
	net := riserNetwork(t)
	riser := net.Segments()[1]

	rep, err := Move(net, 1, 2)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}

	want := [][2]grid.Point{
		{grid.Pt(0, 0), grid.Pt(6, 0)},
		{grid.Pt(6, 0), grid.Pt(6, 3)},
		{grid.Pt(6, 3), grid.Pt(4, 3)},
	}
	segs := net.Segments()
	if got := keys(segs); !slices.Equal(got, want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
	if rep.Split != 1 || rep.Moved != 1 {
		t.Errorf("report = %+v, want one split and one stretch", rep)
	}
	if rep.Index != 1 || segs[rep.Index].Orientation != grid.Vertical {
		t.Errorf("dragged run tracked to %d", rep.Index)
	}
	for _, s := range segs[1:] {
		if s.Flow != riser.Flow || s.Label != riser.Label {
			t.Errorf("leg %v-%v lost the riser size: %+v", s.A, s.B, s)
		}
	}
	if _, ok := net.TerminalAt(grid.Pt(4, 3)); !ok {
		t.Error("outlet moved")
	}
	if err := duct.CheckConnected(net.Terminals(), segs); err != nil {
		t.Errorf("network disconnected: %v", err)
	}
	if err := duct.CheckAxisAligned(segs); err != nil {
		t.Errorf("diagonal run: %v", err)
	}
}

func TestLCornerFollowsDisplacementAxis(t *testing.T) {
	fixed := map[grid.Point]bool{grid.Pt(0, 0): true}

	// Horizontal run dragged vertically: vertical leg first from the pin.
	h, _ := duct.NewSegment(grid.Pt(0, 0), grid.Pt(4, 0))
	out, _, err := Apply([]duct.Segment{h}, fixed, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]grid.Point{{grid.Pt(0, 0), grid.Pt(0, 3)}, {grid.Pt(0, 3), grid.Pt(4, 3)}}
	if got := keys(out); !slices.Equal(got, want) {
		t.Errorf("Y drag = %v, want %v", got, want)
	}

	// Vertical run dragged horizontally: horizontal leg first from the pin.
	v, _ := duct.NewSegment(grid.Pt(0, 0), grid.Pt(0, 4))
	out, _, err = Apply([]duct.Segment{v}, fixed, 0, -2)
	if err != nil {
		t.Fatal(err)
	}
	want = [][2]grid.Point{{grid.Pt(0, 0), grid.Pt(-2, 0)}, {grid.Pt(-2, 0), grid.Pt(-2, 4)}}
	if got := keys(out); !slices.Equal(got, want) {
		t.Errorf("X drag = %v, want %v", got, want)
	}
}

func TestApplyCases(t *testing.T) {
	a, _ := duct.NewSegment(grid.Pt(0, 0), grid.Pt(4, 0))
	b, _ := duct.NewSegment(grid.Pt(4, 0), grid.Pt(4, 3))
	c, _ := duct.NewSegment(grid.Pt(4, 3), grid.Pt(8, 3))
	far, _ := duct.NewSegment(grid.Pt(20, 20), grid.Pt(24, 20))

	tests := []struct {
		name  string
		segs  []duct.Segment
		fixed []grid.Point
		index int
		delta int
		want  [][2]grid.Point
		rep   Report
	}{
		{
			name:  "free run translates",
			segs:  []duct.Segment{b},
			index: 0, delta: 1,
			want: [][2]grid.Point{{grid.Pt(5, 0), grid.Pt(5, 3)}},
			rep:  Report{Delta: grid.Pt(1, 0), Moved: 1},
		},
		{
			name:  "pinned run holds",
			segs:  []duct.Segment{b},
			fixed: []grid.Point{grid.Pt(4, 0), grid.Pt(4, 3)},
			index: 0, delta: 1,
			want: [][2]grid.Point{{grid.Pt(4, 0), grid.Pt(4, 3)}},
			rep:  Report{Delta: grid.Pt(1, 0), Held: 1},
		},
		{
			name:  "other components stay",
			segs:  []duct.Segment{b, far},
			index: 0, delta: -1,
			want: [][2]grid.Point{{grid.Pt(3, 0), grid.Pt(3, 3)}, {grid.Pt(20, 20), grid.Pt(24, 20)}},
			rep:  Report{Delta: grid.Pt(-1, 0), Moved: 1},
		},
		{
			name:  "stretch along run",
			segs:  []duct.Segment{a, b, c},
			fixed: []grid.Point{grid.Pt(0, 0), grid.Pt(8, 3)},
			index: 1, delta: 2,
			want: [][2]grid.Point{
				{grid.Pt(0, 0), grid.Pt(6, 0)},
				{grid.Pt(6, 0), grid.Pt(6, 3)},
				{grid.Pt(6, 3), grid.Pt(8, 3)},
			},
			rep: Report{Delta: grid.Pt(2, 0), Index: 1, Moved: 3},
		},
		{
			name:  "collapse",
			segs:  []duct.Segment{a, b},
			fixed: []grid.Point{grid.Pt(0, 0), grid.Pt(4, 3)},
			index: 1, delta: -4,
			want: [][2]grid.Point{
				{grid.Pt(0, 0), grid.Pt(0, 3)},
				{grid.Pt(0, 3), grid.Pt(4, 3)},
			},
			rep: Report{Delta: grid.Pt(-4, 0), Index: 0, Collapsed: 1, Split: 1},
		},
		{
			name:  "zero delta",
			segs:  []duct.Segment{a, b},
			index: 1, delta: 0,
			want: [][2]grid.Point{{grid.Pt(0, 0), grid.Pt(4, 0)}, {grid.Pt(4, 0), grid.Pt(4, 3)}},
			rep:  Report{Index: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixed := map[grid.Point]bool{}
			for _, p := range tt.fixed {
				fixed[p] = true
			}
			before := slices.Clone(tt.segs)
			out, rep, err := Apply(tt.segs, fixed, tt.index, tt.delta)
			if err != nil {
				t.Fatalf("Apply error: %v", err)
			}
			if got := keys(out); !slices.Equal(got, tt.want) {
				t.Errorf("segments = %v, want %v", got, tt.want)
			}
			if rep != tt.rep {
				t.Errorf("report = %+v, want %+v", rep, tt.rep)
			}
			if !slices.Equal(tt.segs, before) {
				t.Error("Apply modified its input")
			}
		})
	}
}

func TestApplyUnknownSegment(t *testing.T) {
	_, _, err := Apply(nil, nil, 0, 1)
	if !errors.Is(err, errors.ErrCodeSegmentNotFound) {
		t.Errorf("err = %v, want SEGMENT_NOT_FOUND", err)
	}
}
