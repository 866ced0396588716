package steiner

import (
	"slices"
	"testing"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

func input(flows bool, pts ...grid.Point) duct.Input {
	in := duct.Input{
		Inlet:  duct.Terminal{Pos: pts[0], Kind: duct.KindInlet},
		Params: duct.DefaultParams(),
	}
	for _, p := range pts[1:] {
		o := duct.Terminal{Pos: p, Kind: duct.KindOutlet}
		if flows {
			o.Flow = 300
		}
		in.Outlets = append(in.Outlets, o)
	}
	in.Inlet.Flow = duct.SumFlow(in.Outlets)
	return in
}

func mustBuild(t *testing.T, r *Router, in duct.Input) duct.Result {
	t.Helper()
	res, err := r.Build(in)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if err := duct.CheckAxisAligned(res.Segments); err != nil {
		t.Errorf("output not axis-aligned: %v", err)
	}
	if err := duct.CheckConnected(in.Terminals(), res.Segments); err != nil {
		t.Errorf("output not connected: %v", err)
	}
	return res
}

func TestMST(t *testing.T) {
	tests := []struct {
		name   string
		points []grid.Point
		want   int
	}{
		{"empty", nil, 0},
		{"single", []grid.Point{grid.Pt(3, 3)}, 0},
		{"L", []grid.Point{grid.Pt(0, 0), grid.Pt(4, 0), grid.Pt(4, 3)}, 7},
		{"triangle", []grid.Point{grid.Pt(0, 0), grid.Pt(4, 2), grid.Pt(2, 4)}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges, total := MST(tt.points)
			if total != tt.want {
				t.Errorf("MST length = %d, want %d", total, tt.want)
			}
			if len(tt.points) > 1 && len(edges) != len(tt.points)-1 {
				t.Errorf("MST has %d edges, want %d", len(edges), len(tt.points)-1)
			}
		})
	}
}

func TestHananGrid(t *testing.T) {
	got := HananGrid([]grid.Point{grid.Pt(0, 0), grid.Pt(4, 0), grid.Pt(4, 3)})
	want := []grid.Point{grid.Pt(0, 3)}
	if !slices.Equal(got, want) {
		t.Errorf("HananGrid = %v, want %v", got, want)
	}
	if n := len(HananGrid([]grid.Point{grid.Pt(0, 0), grid.Pt(4, 2), grid.Pt(2, 4)})); n != 6 {
		t.Errorf("3x3 Hanan grid has %d free points, want 6", n)
	}
}

func TestCornerTerminalGivesLengthSeven(t *testing.T) {
	in := input(false, grid.Pt(0, 0), grid.Pt(4, 0), grid.Pt(4, 3))
	res := mustBuild(t, New(), in)

	if got := TotalLength(res.Segments); got != 7 {
		t.Errorf("routed length = %d, want 7", got)
	}
	if got := TotalLength(res.Segments); got > 14 {
		t.Errorf("routed length %d exceeds two independent L routes", got)
	}
	for _, s := range res.Segments {
		if s.Sized() {
			t.Errorf("segment %v-%v sized without flows", s.A, s.B)
		}
	}
}

func TestJunctionShortensTree(t *testing.T) {
	r := New()
	tree := r.Tree([]grid.Point{grid.Pt(0, 0), grid.Pt(4, 2), grid.Pt(2, 4)})

	if got := tree.Junctions(); !slices.Equal(got, []grid.Point{grid.Pt(2, 2)}) {
		t.Fatalf("Junctions = %v, want [(2,2)]", got)
	}
	if tree.Length != 8 {
		t.Errorf("tree length = %d, want 8", tree.Length)
	}

	plain := New(WithMaxAdditions(0)).Tree(tree.Points[:tree.Terminals])
	if plain.Length != 10 || len(plain.Junctions()) != 0 {
		t.Errorf("without search: length %d, junctions %v", plain.Length, plain.Junctions())
	}
}

func TestMinImprovementThreshold(t *testing.T) {
	pts := []grid.Point{grid.Pt(0, 0), grid.Pt(4, 2), grid.Pt(2, 4)}

	// The junction at (2,2) saves exactly two cells.
	tests := []struct {
		threshold int
		junctions int
	}{
		{1, 1},
		{2, 1},
		{3, 0},
	}
	for _, tt := range tests {
		tree := New(WithMinImprovement(tt.threshold)).Tree(pts)
		if got := len(tree.Junctions()); got != tt.junctions {
			t.Errorf("threshold %d: junctions = %v, want %d", tt.threshold, tree.Junctions(), tt.junctions)
		}
	}
}

func TestSizedRoutingFollowsDownstreamFlow(t *testing.T) {
	in := input(true, grid.Pt(0, 0), grid.Pt(4, 2), grid.Pt(2, 4))
	res := mustBuild(t, New(), in)

	type run struct {
		a, b grid.Point
		flow float64
	}
	var got []run
	for _, s := range res.Segments {
		got = append(got, run{s.A, s.B, s.Flow})
		if !s.Sized() || s.Label == "" {
			t.Errorf("segment %v-%v not sized", s.A, s.B)
		}
	}
	want := []run{
		{grid.Pt(0, 0), grid.Pt(2, 0), 600},
		{grid.Pt(2, 0), grid.Pt(2, 2), 600},
		{grid.Pt(2, 2), grid.Pt(4, 2), 300},
		{grid.Pt(2, 2), grid.Pt(2, 4), 300},
	}
	if !slices.Equal(got, want) {
		t.Errorf("segments =\n%v\nwant\n%v", got, want)
	}
}

func TestRouteReusesPlacedRuns(t *testing.T) {
	tree := Tree{
		Points:    []grid.Point{grid.Pt(0, 0), grid.Pt(0, 6), grid.Pt(3, 4)},
		Terminals: 3,
		Edges:     []Edge{{U: 0, V: 1, Weight: 6}, {U: 1, V: 2, Weight: 5}},
	}
	segs := route(tree)
	if len(segs) != 3 {
		t.Fatalf("route produced %d runs, want 3", len(segs))
	}
	// Vertical-first overlaps the trunk, horizontal-first would not.
	if segs[1].A != grid.Pt(0, 6) || segs[1].B != grid.Pt(0, 4) {
		t.Errorf("first leg = %v-%v, want (0,6)-(0,4)", segs[1].A, segs[1].B)
	}

	clean := dedupe(split(segs))
	if got := TotalLength(clean); got != 9 {
		t.Errorf("length after dedupe = %d, want 9", got)
	}
}

func TestRouteTieFavorsHorizontalFirst(t *testing.T) {
	tree := Tree{
		Points:    []grid.Point{grid.Pt(0, 0), grid.Pt(3, 2)},
		Terminals: 2,
		Edges:     []Edge{{U: 0, V: 1, Weight: 5}},
	}
	segs := route(tree)
	if len(segs) != 2 || segs[0].Orientation != grid.Horizontal {
		t.Errorf("route = %v, want horizontal leg first", segs)
	}
}

func TestSplitAndDedupe(t *testing.T) {
	a, _ := duct.NewSegment(grid.Pt(0, 0), grid.Pt(4, 0))
	b, _ := duct.NewSegment(grid.Pt(6, 0), grid.Pt(2, 0))
	c, _ := duct.NewSegment(grid.Pt(3, 0), grid.Pt(3, 5))

	got := dedupe(split([]duct.Segment{a, b, c}))

	keys := make([][2]grid.Point, len(got))
	for i, s := range got {
		keys[i] = s.Key()
	}
	want := [][2]grid.Point{
		{grid.Pt(0, 0), grid.Pt(2, 0)},
		{grid.Pt(2, 0), grid.Pt(3, 0)},
		{grid.Pt(3, 0), grid.Pt(4, 0)},
		{grid.Pt(4, 0), grid.Pt(6, 0)},
		{grid.Pt(3, 0), grid.Pt(3, 5)},
	}
	if !slices.Equal(keys, want) {
		t.Errorf("keys =\n%v\nwant\n%v", keys, want)
	}
}

func TestBuildErrors(t *testing.T) {
	in := input(true, grid.Pt(0, 0))
	if _, err := New().Build(in); !errors.Is(err, errors.ErrCodeIncompleteTopology) {
		t.Errorf("no outlets: err = %v", err)
	}

	in = input(true, grid.Pt(0, 0), grid.Pt(3, 3))
	in.Params.AspectRatio = 7
	if _, err := New().Build(in); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad ratio: err = %v", err)
	}

	in = input(true, grid.Pt(0, 0), grid.Pt(3, 3))
	in.Inlet.Flow = 100
	res, err := New().Build(in)
	if err != nil {
		t.Fatalf("imbalance must not abort: %v", err)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], errors.ErrCodeFlowImbalance) {
		t.Errorf("Warnings = %v, want FLOW_IMBALANCE", res.Warnings)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	in := input(true,
		grid.Pt(0, 0), grid.Pt(7, 3), grid.Pt(2, 9), grid.Pt(11, 11),
		grid.Pt(5, 6), grid.Pt(14, 1), grid.Pt(9, 8),
	)
	first := mustBuild(t, New(), in)
	second := mustBuild(t, New(), in)
	if !slices.Equal(first.Segments, second.Segments) {
		t.Errorf("builds differ:\n%v\n%v", first.Segments, second.Segments)
	}
}
