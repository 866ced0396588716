// Package sizing converts airflow and friction targets into duct dimensions.
//
// All functions are pure and independent of any drawing state. Units follow
// Korean/Japanese HVAC practice: flow Q in m³/h, pressure-drop rate Δp in
// mmAq/m, dimensions in millimeters.
//
// # Relations
//
// Equivalent circular diameter for a flow and friction rate:
//
//	D = 1000 · (C · Q^1.9 / Δp)^0.199,  C = 3.295e-10
//
// Circular diameter equivalent to an a×b rectangle:
//
//	De = 1.30 · (ab)^0.625 / (a+b)^0.25
//
// [SizeRect] inverts the second relation for a requested aspect ratio and
// snaps the sides to a manufacturing step (50 mm by default), preferring the
// flatter candidate when it still meets the target diameter.
//
// # Example
//
//	res, err := sizing.Size(15000, 0.1, 2, sizing.DefaultStep)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Label()) // "1000x550 (Ø800)"
package sizing
