package topology

import (
	"strings"
	"testing"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/grid"
)

func sample() ([]duct.Terminal, []duct.Segment) {
	ts := []duct.Terminal{
		{Pos: grid.Pt(0, 0), Kind: duct.KindInlet, Flow: 600},
		{Pos: grid.Pt(4, 0), Kind: duct.KindOutlet, Flow: 300},
		{Pos: grid.Pt(2, 3), Kind: duct.KindOutlet, Flow: 300},
	}
	segs := []duct.Segment{
		{A: grid.Pt(0, 0), B: grid.Pt(2, 0), Orientation: grid.Horizontal, Flow: 600, Label: "300x150 (Ø250)"},
		{A: grid.Pt(2, 0), B: grid.Pt(4, 0), Orientation: grid.Horizontal, Flow: 300},
		{A: grid.Pt(2, 0), B: grid.Pt(2, 3), Orientation: grid.Vertical, Flow: 300},
	}
	return ts, segs
}

func TestToDOT(t *testing.T) {
	ts, segs := sample()
	dot := ToDOT(ts, segs, Options{})

	tests := []struct {
		name string
		want string
	}{
		{"header", "digraph G {"},
		{"inlet node", `"0_0" [label="inlet\n600 m³/h", shape=box`},
		{"outlet node", `"4_0" [label="outlet\n300 m³/h", shape=ellipse`},
		{"junction", `"2_0" [shape=point`},
		{"sized edge", `"0_0" -> "2_0" [label="300x150 (Ø250)\n600 m³/h"]`},
		{"branch edge", `"2_0" -> "2_3"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(dot, tt.want) {
				t.Errorf("DOT missing %s:\n%s", tt.want, dot)
			}
		})
	}
	if strings.Count(dot, "->") != len(segs) {
		t.Errorf("expected %d edges", len(segs))
	}
}

func TestToDOTDetailed(t *testing.T) {
	ts, segs := sample()
	dot := ToDOT(ts, segs, Options{Detailed: true, CellSize: 0.5})
	if !strings.Contains(dot, `xlabel="(2,0)"`) {
		t.Error("detailed junctions should carry their position")
	}
	if !strings.Contains(dot, `1.50 m`) {
		t.Error("detailed edges should carry their length")
	}
}

func TestToDOTDeterministic(t *testing.T) {
	ts, segs := sample()
	if ToDOT(ts, segs, Options{}) != ToDOT(ts, segs, Options{}) {
		t.Error("ToDOT should be deterministic")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("unexpected header: %s", out)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("documents without a viewBox should pass through")
	}
}
