// Package plan renders a duct network as a to-scale SVG floor plan.
//
// Ducts are drawn as thick lines whose stroke equals the larger rectangular
// side, so relative sizes read directly off the drawing. The inlet is a red
// square and outlets are blue circles.
//
//	svg := plan.RenderSVG(plan.FromNetwork(net), plan.WithLabels(), plan.WithGrid())
package plan

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// DefaultScale is the number of SVG pixels per meter.
const DefaultScale = 40.0

const (
	marginMeters = 1.0
	inletSide    = 0.6  // m
	outletRadius = 0.25 // m
	minStroke    = 2.0  // px
)

// Plan is the content of one drawing.
type Plan struct {
	CellSize  float64
	Terminals []duct.Terminal
	Segments  []duct.Segment
}

// FromNetwork captures the current state of net.
func FromNetwork(net *duct.Network) Plan {
	return Plan{
		CellSize:  net.CellSize(),
		Terminals: net.Terminals(),
		Segments:  net.Segments(),
	}
}

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	scale  float64
	labels bool
	grid   bool
	title  string
}

// WithScale sets pixels per meter. Non-positive values are ignored.
func WithScale(pxPerMeter float64) Option {
	return func(r *renderer) {
		if pxPerMeter > 0 {
			r.scale = pxPerMeter
		}
	}
}

// WithLabels prints each segment's size and each terminal's flow.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// WithGrid draws the cell grid behind the network.
func WithGrid() Option { return func(r *renderer) { r.grid = true } }

// WithTitle adds a caption in the top-left corner.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// RenderSVG draws p.
func RenderSVG(p Plan, opts ...Option) []byte {
	r := renderer{scale: DefaultScale}
	for _, opt := range opts {
		opt(&r)
	}
	cell := p.CellSize
	if cell <= 0 {
		cell = grid.DefaultCellSize
	}

	b := boundsOf(p)
	f := frame{cell: cell, scale: r.scale, min: b.min}
	w := f.px(b.max.X-b.min.X) + 2*f.margin()
	h := f.px(b.max.Y-b.min.Y) + 2*f.margin()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	buf.WriteString(`  <rect width="100%" height="100%" fill="white"/>` + "\n")

	if r.grid {
		renderGrid(&buf, f, b)
	}
	for _, s := range p.Segments {
		renderSegment(&buf, f, s, r.labels)
	}
	for _, t := range p.Terminals {
		renderTerminal(&buf, f, t, r.labels)
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="8" y="18" font-family="sans-serif" font-size="14" font-weight="bold">%s</text>`+"\n",
			html.EscapeString(r.title))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

type bounds struct{ min, max grid.Point }

func boundsOf(p Plan) bounds {
	var pts []grid.Point
	for _, t := range p.Terminals {
		pts = append(pts, t.Pos)
	}
	for _, s := range p.Segments {
		pts = append(pts, s.A, s.B)
	}
	if len(pts) == 0 {
		return bounds{}
	}
	b := bounds{min: pts[0], max: pts[0]}
	for _, q := range pts[1:] {
		b.min.X = min(b.min.X, q.X)
		b.min.Y = min(b.min.Y, q.Y)
		b.max.X = max(b.max.X, q.X)
		b.max.Y = max(b.max.Y, q.Y)
	}
	return b
}

// frame maps grid indices to pixels.
type frame struct {
	cell, scale float64
	min         grid.Point
}

func (f frame) margin() float64          { return marginMeters * f.scale }
func (f frame) px(n int) float64         { return float64(n) * f.cell * f.scale }
func (f frame) meters(m float64) float64 { return m * f.scale }

func (f frame) at(p grid.Point) (x, y float64) {
	return f.px(p.X-f.min.X) + f.margin(), f.px(p.Y-f.min.Y) + f.margin()
}

func renderGrid(buf *bytes.Buffer, f frame, b bounds) {
	x0, y0 := f.at(b.min)
	x1, y1 := f.at(b.max)
	buf.WriteString(`  <g stroke="#e5e5e5" stroke-width="1">` + "\n")
	for x := b.min.X; x <= b.max.X; x++ {
		px, _ := f.at(grid.Pt(x, b.min.Y))
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", px, y0, px, y1)
	}
	for y := b.min.Y; y <= b.max.Y; y++ {
		_, py := f.at(grid.Pt(b.min.X, y))
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x0, py, x1, py)
	}
	buf.WriteString("  </g>\n")
}

func renderSegment(buf *bytes.Buffer, f frame, s duct.Segment, labels bool) {
	x1, y1 := f.at(s.A)
	x2, y2 := f.at(s.B)

	if !s.Sized() {
		fmt.Fprintf(buf, `  <line class="duct" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#888" stroke-width="%.1f" stroke-dasharray="6 4"/>`+"\n",
			x1, y1, x2, y2, minStroke)
		return
	}

	stroke := math.Max(minStroke, f.meters(s.Width/1000))
	fmt.Fprintf(buf, `  <line class="duct" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#9ab" stroke-opacity="0.8" stroke-width="%.1f" stroke-linecap="square"/>`+"\n",
		x1, y1, x2, y2, stroke)

	if !labels || s.Label == "" {
		return
	}
	mx, my := (x1+x2)/2, (y1+y2)/2
	if s.Orientation == grid.Horizontal {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="11">%s</text>`+"\n",
			mx, my-stroke/2-4, html.EscapeString(s.Label))
		return
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="11">%s</text>`+"\n",
		mx+stroke/2+4, my, html.EscapeString(s.Label))
}

func renderTerminal(buf *bytes.Buffer, f frame, t duct.Terminal, labels bool) {
	x, y := f.at(t.Pos)
	if t.IsInlet() {
		side := f.meters(inletSide)
		fmt.Fprintf(buf, `  <rect class="inlet" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#d33"/>`+"\n",
			x-side/2, y-side/2, side, side)
	} else {
		fmt.Fprintf(buf, `  <circle class="outlet" cx="%.1f" cy="%.1f" r="%.1f" fill="#36c"/>`+"\n",
			x, y, f.meters(outletRadius))
	}
	if labels {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="10" fill="#333">%g</text>`+"\n",
			x+f.meters(outletRadius)+2, y+f.meters(outletRadius)+10, t.Flow)
	}
}
