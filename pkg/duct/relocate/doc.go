// Package relocate moves duct runs of a built network while keeping every
// run axis-aligned and every connection intact.
//
// A horizontal run can only be dragged vertically and a vertical run only
// horizontally. The drag affects every run connected to the dragged one
// through shared endpoints. Endpoints sitting on a terminal never move:
//
//   - both ends on terminals: the run stays put
//   - both ends free: the run is translated
//   - one end on a terminal: the free end is translated; if the run would
//     turn diagonal it is replaced by an L of two runs joined at a new
//     corner
//
// The L starts at the fixed end. For a horizontal displacement the first
// leg is horizontal, for a vertical displacement it is vertical, so the
// corner sits on the fixed end's row or column respectively. Both legs
// keep the replaced run's flow and cross-section.
//
// [Move] applies a single snapped displacement. A [Gesture] turns a stream
// of pointer deltas into snapped moves and validates the result on commit.
package relocate
