// Package steiner routes a duct network as an approximate rectilinear
// Steiner tree.
//
// The router works in three stages:
//
//  1. Junction search: the iterated 1-Steiner heuristic. Starting from the
//     terminals, it repeatedly adds the Hanan-grid point that shortens the
//     Manhattan minimum spanning tree the most, until no point saves at
//     least the minimum improvement or the addition cap is reached. Added
//     points left with degree two or less are pruned.
//  2. Routing: every spanning-tree edge becomes a straight run or an L made
//     of one horizontal and one vertical run. Of the two L shapes, the one
//     overlapping more already-placed runs wins; ties go to
//     horizontal-first.
//  3. Cleanup: runs are split at other runs' endpoints so that tees connect
//     through shared endpoints, duplicates are dropped, cycles closed by
//     overlapping routes are broken and dead-end stubs are removed.
//
// Collinear runs that merely touch are not merged into one.
//
// When the outlets carry flow, each run is sized by the outlet flow
// downstream of it, with the tree rooted at the inlet. Without flows the
// output is topology only.
//
// The result is a bounded-effort heuristic: it never fails because a
// shorter tree exists.
package steiner
