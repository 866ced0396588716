// Package spine builds spine-and-branch duct networks.
//
// The spine is a horizontal trunk at the inlet's row. Outlets are split by
// side (west, east, or in the inlet's column) and, per side, grouped by row:
// outlets whose Y lies within the group tolerance of the group's first row
// share one branch. Each group is fed by a riser from the spine at the
// group's column nearest the inlet. Multi-outlet groups continue along a
// horizontal distributor with one vertical stub per outlet.
//
// Every segment is sized by the flow it carries, so sizes never grow with
// distance from the inlet:
//
//	inlet ──1000── ┬ ──700── ┬ ──400── ┐
//	               │300      │300      │400
//	               o         o         o
//
// Outlets in the inlet's column get a single stub and no spine segment.
package spine
