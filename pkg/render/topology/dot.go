package topology

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/grid"
	"github.com/matzehuels/ductwork/pkg/render"
)

// Options configures graph generation.
type Options struct {
	// Detailed adds grid positions to node labels and lengths to edges.
	Detailed bool
	// CellSize converts lengths to meters when Detailed is set.
	CellSize float64
}

// ToDOT converts a network to Graphviz DOT source.
func ToDOT(ts []duct.Terminal, segs []duct.Segment, opts Options) string {
	kinds := make(map[grid.Point]duct.Terminal, len(ts))
	for _, t := range ts {
		kinds[t.Pos] = t
	}

	var pts []grid.Point
	seen := make(map[grid.Point]bool)
	add := func(p grid.Point) {
		if !seen[p] {
			seen[p] = true
			pts = append(pts, p)
		}
	}
	for _, t := range ts {
		add(t.Pos)
	}
	for _, s := range segs {
		add(s.A)
		add(s.B)
	}
	slices.SortFunc(pts, grid.Compare)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontsize=10, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	for _, p := range pts {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p), strings.Join(nodeAttrs(p, kinds, opts), ", "))
	}

	buf.WriteString("\n")
	for _, s := range segs {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", nodeID(s.A), nodeID(s.B), edgeLabel(s, opts))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(p grid.Point) string {
	return fmt.Sprintf("%d_%d", p.X, p.Y)
}

func nodeAttrs(p grid.Point, kinds map[grid.Point]duct.Terminal, opts Options) []string {
	t, ok := kinds[p]
	if !ok {
		attrs := []string{"shape=point", "width=0.08"}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", p.String()))
		}
		return attrs
	}

	label := fmt.Sprintf("%s\n%g m³/h", t.Kind, t.Flow)
	if opts.Detailed {
		label += "\n" + p.String()
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if t.IsInlet() {
		return append(attrs, "shape=box", "style=filled", "fillcolor=\"#f4cccc\"")
	}
	return append(attrs, "shape=ellipse", "style=filled", "fillcolor=\"#cfe2f3\"")
}

func edgeLabel(s duct.Segment, opts Options) string {
	parts := []string{}
	if s.Label != "" {
		parts = append(parts, s.Label)
	}
	if s.Flow > 0 {
		parts = append(parts, fmt.Sprintf("%g m³/h", s.Flow))
	}
	if opts.Detailed && opts.CellSize > 0 {
		parts = append(parts, fmt.Sprintf("%.2f m", s.LengthMeters(opts.CellSize)))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based header with a pixel one so
// the output scales like the plan view.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	head := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(head))
}

// RenderPNG renders DOT source as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
