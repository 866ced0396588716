// Package duct models an air-duct network on the integer drawing grid.
//
// A [Network] is owned by exactly one drawing. It holds the terminals the
// user placed (one inlet and any number of outlets) and the axis-aligned
// [Segment] values produced by the most recent build. Segments connect when
// they share an endpoint exactly; because coordinates are grid indices this
// is plain integer equality.
//
// # Building
//
// Construction strategies implement [NetworkBuilder]. Two ship with the
// module:
//
//   - spine.Builder lays a trunk at inlet height and drops sized risers to
//     groups of outlets.
//   - steiner.Router approximates a minimum-length rectilinear tree over the
//     terminals.
//
// [Network.Rebuild] runs a builder and swaps the whole segment set in one
// step. A failed build leaves the previous segments untouched; any change to
// the terminals discards them.
//
// # Example
//
//	net := duct.New(grid.DefaultCellSize)
//	net.SetInlet(grid.Pt(0, 0), 1000)
//	net.AddOutlet(grid.Pt(4, 3), 600)
//	net.AddOutlet(grid.Pt(-2, 2), 400)
//	report, err := net.Rebuild(spine.New(), duct.DefaultParams())
package duct
