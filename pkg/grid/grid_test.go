package grid

import "testing"

func TestManhattan(t *testing.T) {
	tests := []struct {
		a, b Point
		want int
	}{
		{Pt(0, 0), Pt(4, 3), 7},
		{Pt(-2, 5), Pt(1, 1), 7},
		{Pt(3, 3), Pt(3, 3), 0},
	}
	for _, tt := range tests {
		if got := Manhattan(tt.a, tt.b); got != tt.want {
			t.Errorf("Manhattan(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOrientationOf(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Point
		want   Orientation
		wantOK bool
	}{
		{"horizontal", Pt(0, 2), Pt(5, 2), Horizontal, true},
		{"vertical", Pt(1, 0), Pt(1, -4), Vertical, true},
		{"diagonal", Pt(0, 0), Pt(2, 3), Horizontal, false},
		{"degenerate", Pt(2, 2), Pt(2, 2), Horizontal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OrientationOf(tt.a, tt.b)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("OrientationOf = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("%v: Opposite is not an involution", d)
		}
		step := d.Delta()
		if got, ok := DirectionOf(Pt(0, 0), step); !ok || got != d {
			t.Errorf("DirectionOf(origin, %v) = %v, want %v", step, got, d)
		}
		if o, _ := OrientationOf(Pt(0, 0), step); o != d.Axis() {
			t.Errorf("%v: Axis = %v, segment orientation = %v", d, d.Axis(), o)
		}
	}
}

func TestSideOf(t *testing.T) {
	ref := Pt(5, 5)
	if SideOf(ref, Pt(2, 9)) != SideWest {
		t.Error("expected west")
	}
	if SideOf(ref, Pt(8, 0)) != SideEast {
		t.Error("expected east")
	}
	if SideOf(ref, Pt(5, -3)) != SideCenter {
		t.Error("expected center")
	}
}

func TestOrientationText(t *testing.T) {
	for _, o := range []Orientation{Horizontal, Vertical} {
		b, err := o.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var back Orientation
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText: %v", err)
		}
		if back != o {
			t.Errorf("round trip %v -> %s -> %v", o, b, back)
		}
	}
	var o Orientation
	if err := o.UnmarshalText([]byte("diagonal")); err == nil {
		t.Error("expected error for unknown orientation")
	}
}

func TestSnap(t *testing.T) {
	if got := Snap(1.26, 0.5); got != 3 {
		t.Errorf("Snap(1.26) = %d, want 3", got)
	}
	if got := Snap(-0.74, 0.5); got != -1 {
		t.Errorf("Snap(-0.74) = %d, want -1", got)
	}
	if got := ToModel(7, 0.5); got != 3.5 {
		t.Errorf("ToModel(7) = %v, want 3.5", got)
	}
}
