package duct

// Material is a sheet-metal estimate for a sized network.
type Material struct {
	// RectArea is Σ 2(w+h)·L over all sized segments, in m².
	RectArea float64 `json:"rect_area_m2"`
	// RoundArea is Σ π·D·L for the circular equivalents, in m².
	RoundArea float64 `json:"round_area_m2"`
	// Length is the total run length in meters, unsized segments included.
	Length float64 `json:"length_m"`
}

// EstimateMaterial sums the surface area of segs on a grid of cellSize meters.
func EstimateMaterial(segs []Segment, cellSize float64) Material {
	var m Material
	for _, s := range segs {
		l := s.LengthMeters(cellSize)
		m.Length += l
		if !s.Sized() {
			continue
		}
		m.RectArea += s.PerimeterMeters() * l
		m.RoundArea += s.CircumferenceMeters() * l
	}
	return m
}
