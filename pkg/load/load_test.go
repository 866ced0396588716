package load

import (
	"testing"

	"github.com/matzehuels/ductwork/pkg/errors"
)

func TestSupplyFlow(t *testing.T) {
	tests := []struct {
		name string
		room Room
		temp Temperatures
		want int
	}{
		{"office", Room{Area: 20, Norm: 50, Equip: 30}, Temperatures{Indoor: 26, Supply: 16}, 478},
		{"lab", Room{Area: 30, Norm: 40, Equip: 10}, Temperatures{Indoor: 24, Supply: 16}, 560},
		{"store", Room{Area: 12.5, Norm: 60}, Temperatures{Indoor: 27, Supply: 16}, 204},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SupplyFlow(tt.room, tt.temp)
			if err != nil {
				t.Fatalf("SupplyFlow error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SupplyFlow = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSupplyFlowErrors(t *testing.T) {
	tests := []struct {
		name string
		room Room
		temp Temperatures
	}{
		{"supply warmer", Room{Area: 10, Norm: 50}, Temperatures{Indoor: 20, Supply: 22}},
		{"equal temperatures", Room{Area: 10, Norm: 50}, Temperatures{Indoor: 20, Supply: 20}},
		{"no area", Room{Norm: 50}, Temperatures{Indoor: 26, Supply: 16}},
		{"negative load", Room{Area: 10, Norm: -5}, Temperatures{Indoor: 26, Supply: 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SupplyFlow(tt.room, tt.temp); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestDiffusers(t *testing.T) {
	tests := []struct {
		area float64
		want int
	}{
		{0, 0},
		{5, 0},
		{12.5, 2},
		{20, 2},
		{30, 4},
		{36, 4},
		{45, 6},
	}
	for _, tt := range tests {
		if got := Diffusers(tt.area); got != tt.want {
			t.Errorf("Diffusers(%v) = %d, want %d", tt.area, got, tt.want)
		}
	}
}

func TestCompute(t *testing.T) {
	rooms := []Room{
		{Name: "office", Area: 20, Norm: 50, Equip: 30},
		{Name: "lab", Area: 30, Norm: 40, Equip: 10},
	}
	s, err := Compute(rooms, Temperatures{Indoor: 26, Supply: 16})
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(s.Rows))
	}
	if s.Total != s.Rows[0].Flow+s.Rows[1].Flow {
		t.Errorf("Total = %d, rows sum to %d", s.Total, s.Rows[0].Flow+s.Rows[1].Flow)
	}
	if s.Rows[0].PerOutlet != float64(s.Rows[0].Flow)/2 {
		t.Errorf("PerOutlet = %v", s.Rows[0].PerOutlet)
	}

	rooms = append(rooms, Room{Name: "void"})
	if _, err := Compute(rooms, Temperatures{Indoor: 26, Supply: 16}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid room: err = %v", err)
	}
}

func TestDistributeEqual(t *testing.T) {
	shares, err := DistributeEqual(900, 3)
	if err != nil {
		t.Fatalf("DistributeEqual error: %v", err)
	}
	for _, s := range shares {
		if s != 300 {
			t.Errorf("share = %v, want 300", s)
		}
	}
	if _, err := DistributeEqual(900, 0); !errors.Is(err, errors.ErrCodeIncompleteTopology) {
		t.Errorf("no outlets: err = %v", err)
	}
}
