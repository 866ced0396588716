// Package render draws duct networks.
//
// Two views are provided:
//
//   - [plan]: a to-scale floor plan in SVG. Grid indices are multiplied by
//     the cell size, so a 1000 mm duct is drawn twice as wide as a 500 mm one.
//   - [topology]: the network as a directed Graphviz graph from the inlet
//     to every outlet, each edge labelled with its size and flow.
//
// [ToPDF] and [ToPNG] convert either SVG with the external rsvg-convert tool
// (from librsvg):
//
//	svg := plan.RenderSVG(p, plan.WithLabels())
//	png, err := render.ToPNG(svg, 2.0)
//
// [plan]: github.com/matzehuels/ductwork/pkg/render/plan
// [topology]: github.com/matzehuels/ductwork/pkg/render/topology
package render
