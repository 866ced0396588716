// Package grid defines the integer coordinate plane shared by every duct
// component.
//
// Positions are grid indices: integer identifiers of snap-grid cells. A
// drawing position is obtained by multiplying an index by the cell size
// (0.5 m by default). Keeping indices as the only internal representation
// means zooming, panning and repeated drags never accumulate floating-point
// drift, and two segments are connected exactly when their endpoints compare
// equal.
//
// # Orientation and Direction
//
// Segments are always axis-aligned, so [Orientation] has two values.
// [Direction] is the closed set of compass directions used when walking or
// labelling a network; callers switch over it exhaustively.
package grid
