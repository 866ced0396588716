// Package load estimates room supply airflow from cooling loads.
//
// The supply flow of a room is
//
//	Q = ceil(A · (q_norm + q_equip) · 860 / 1.2 / 0.24 / 1000 / ΔT)   [m³/h]
//
// with A the floor area in m², q the specific loads in W/m² and ΔT the
// difference between indoor and supply air temperature in K. 860 converts
// W to kcal/h, 1.2 kg/m³ and 0.24 kcal/(kg·K) are the density and specific
// heat of air.
package load

import (
	"math"

	"github.com/matzehuels/ductwork/pkg/errors"
)

// AreaPerDiffuser is the floor area, in m², served by one diffuser.
const AreaPerDiffuser = 9.0

const (
	wattToKcalPerHour = 860.0
	airDensity        = 1.2  // kg/m³
	airSpecificHeat   = 0.24 // kcal/(kg·K)
)

// Room is one conditioned space.
type Room struct {
	Name  string  `json:"name" toml:"name"`
	Area  float64 `json:"area_m2" toml:"area"`   // m²
	Norm  float64 `json:"norm_w_m2" toml:"norm"` // general load, W/m²
	Equip float64 `json:"equip_w_m2" toml:"equip"`
}

// Temperatures are the design air temperatures in °C.
type Temperatures struct {
	Indoor float64 `json:"indoor" toml:"indoor"`
	Supply float64 `json:"supply" toml:"supply"`
}

// Delta returns indoor minus supply temperature. It fails with
// INVALID_INPUT unless the supply air is colder than the room.
func (t Temperatures) Delta() (float64, error) {
	d := t.Indoor - t.Supply
	if math.IsNaN(d) || d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"indoor temperature (%g °C) must be above supply temperature (%g °C)", t.Indoor, t.Supply)
	}
	return d, nil
}

// SupplyFlow returns the room's supply airflow in m³/h, rounded up.
func SupplyFlow(r Room, t Temperatures) (int, error) {
	dt, err := t.Delta()
	if err != nil {
		return 0, err
	}
	if err := errors.ValidatePositive("room area", r.Area); err != nil {
		return 0, err
	}
	if r.Norm < 0 || r.Equip < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "room %q has a negative heat load", r.Name)
	}
	raw := r.Area * (r.Norm + r.Equip) * wattToKcalPerHour / airDensity / airSpecificHeat / 1000 / dt
	return int(math.Ceil(raw)), nil
}

// Diffusers returns the number of diffusers for a floor area: one per
// [AreaPerDiffuser] m², truncated, then rounded up to an even count.
func Diffusers(area float64) int {
	if area <= 0 {
		return 0
	}
	n := int(area / AreaPerDiffuser)
	if n%2 == 1 {
		n++
	}
	return n
}

// Row is the computed result for one room.
type Row struct {
	Room      Room    `json:"room"`
	Flow      int     `json:"flow_m3h"`
	Diffusers int     `json:"diffusers"`
	PerOutlet float64 `json:"per_outlet_m3h"` // Flow split over the diffusers; 0 without diffusers
}

// Schedule is a room-by-room supply air table.
type Schedule struct {
	Temperatures Temperatures `json:"temperatures"`
	Rows         []Row        `json:"rows"`
	Total        int          `json:"total_m3h"`
}

// Compute builds the schedule for rooms. The first invalid room aborts.
func Compute(rooms []Room, t Temperatures) (Schedule, error) {
	s := Schedule{Temperatures: t, Rows: make([]Row, 0, len(rooms))}
	for _, r := range rooms {
		q, err := SupplyFlow(r, t)
		if err != nil {
			return Schedule{}, errors.Wrap(errors.GetCode(err), err, "room %q", r.Name)
		}
		row := Row{Room: r, Flow: q, Diffusers: Diffusers(r.Area)}
		if row.Diffusers > 0 {
			row.PerOutlet = float64(q) / float64(row.Diffusers)
		}
		s.Rows = append(s.Rows, row)
		s.Total += q
	}
	return s, nil
}

// DistributeEqual splits total evenly over n outlets.
func DistributeEqual(total float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeIncompleteTopology, "no air outlets placed")
	}
	if err := errors.ValidatePositive("inlet flow", total); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	share := total / float64(n)
	for i := range out {
		out[i] = share
	}
	return out, nil
}
