// Package topology renders a duct network as a directed graph.
//
// Every segment endpoint becomes a node: the inlet as a box, outlets as
// ellipses and junctions or bends as small points. Edges run in the
// direction of air flow and carry the segment label and flow.
//
//	dot := topology.ToDOT(terminals, segments, topology.Options{Detailed: true})
//	svg, err := topology.RenderSVG(dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package topology
