package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/render"
	"github.com/matzehuels/ductwork/pkg/render/plan"
	"github.com/matzehuels/ductwork/pkg/render/topology"
)

// Report is the JSON artifact: the network plus its material estimate.
type Report struct {
	CellSize  float64         `json:"cell_size_m"`
	Terminals []duct.Terminal `json:"terminals"`
	Segments  []duct.Segment  `json:"segments"`
	Material  duct.Material   `json:"material"`
}

// NewReport summarizes p.
func NewReport(p plan.Plan) Report {
	return Report{
		CellSize:  p.CellSize,
		Terminals: p.Terminals,
		Segments:  p.Segments,
		Material:  duct.EstimateMaterial(p.Segments, p.CellSize),
	}
}

// Render generates artifacts for p in the requested formats. It does not
// touch the cache.
func Render(p plan.Plan, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	planSVG := func() []byte {
		if svg == nil {
			svg = plan.RenderSVG(p, opts.planOptions()...)
		}
		return svg
	}
	dot := func() string {
		return topology.ToDOT(p.Terminals, p.Segments, topology.Options{Detailed: opts.Labels, CellSize: p.CellSize})
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = planSVG()
		case FormatPNG:
			data, err = render.ToPNG(planSVG(), 2.0)
		case FormatPDF:
			data, err = render.ToPDF(planSVG())
		case FormatDOT:
			data = []byte(dot())
		case FormatTopology:
			data, err = topology.RenderSVG(dot())
		case FormatJSON:
			data, err = json.MarshalIndent(NewReport(p), "", "  ")
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
