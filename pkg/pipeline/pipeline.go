// Package pipeline runs the build → render workflow shared by the CLI and
// the HTTP server.
//
// A build turns a terminal set into sized duct segments with one of the
// network builders (spine or steiner). A render turns the result into
// artifacts: a to-scale SVG plan, a Graphviz topology, PNG/PDF conversions
// or a JSON report. Both stages are cached; builders are pure, so the
// terminals, parameters and strategy fully determine the output.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, net.Input(params), pipeline.Options{
//	    Strategy: pipeline.StrategySpine,
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts["svg"]
//
// To rebuild a live network in place, wrap the runner as a builder:
//
//	net.Rebuild(runner.Builder(ctx, opts), opts.Params)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/spine"
	"github.com/matzehuels/ductwork/pkg/duct/steiner"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
	"github.com/matzehuels/ductwork/pkg/render/plan"
)

// Strategies.
const (
	StrategySpine   = spine.Name
	StrategySteiner = steiner.Name
)

// DefaultStrategy is used when Options.Strategy is empty.
const DefaultStrategy = StrategySpine

// Output formats.
const (
	FormatSVG      = "svg"      // to-scale plan
	FormatTopology = "topology" // Graphviz SVG of the flow graph
	FormatDOT      = "dot"      // Graphviz source
	FormatPNG      = "png"      // plan, rasterized
	FormatPDF      = "pdf"      // plan, as PDF
	FormatJSON     = "json"     // segment report
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatTopology: true,
	FormatDOT:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
}

// ValidStrategies is the set of supported builders.
var ValidStrategies = map[string]bool{
	StrategySpine:   true,
	StrategySteiner: true,
}

// Options configures a pipeline run. It is decoded directly from API
// request bodies.
type Options struct {
	// Build options
	Strategy string      `json:"strategy,omitempty"`
	Params   duct.Params `json:"params"`
	CellSize float64     `json:"cell_size_m,omitempty"`

	// GroupTolerance is the spine row tolerance in cells. Nil means
	// spine.DefaultGroupTolerance.
	GroupTolerance *int `json:"group_tolerance,omitempty"`
	// MaxAdditions caps Steiner junctions. Nil means
	// steiner.DefaultMaxAdditions; zero routes a plain spanning tree.
	MaxAdditions   *int `json:"max_additions,omitempty"`
	MinImprovement int  `json:"min_improvement,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // px per meter
	Labels  bool     `json:"labels,omitempty"`
	Grid    bool     `json:"grid,omitempty"`
	Title   string   `json:"title,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Input duct.Input
	Build duct.Result

	// NetworkHash is the content hash of the built network.
	NetworkHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Outlets    int
	Segments   int
	Skipped    int
	Warnings   int
	Material   duct.Material
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	BuildHit  bool
	RenderHit bool // all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, topology, dot, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a strategy names a known builder.
func ValidateStrategy(s string) error {
	if !ValidStrategies[s] {
		return errors.New(errors.ErrCodeInvalidStrategy, "invalid strategy: %q (must be one of: spine, steiner)", s)
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild validates and sets defaults for the build stage.
func (o *Options) ValidateForBuild() error {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Params == (duct.Params{}) {
		o.Params = duct.DefaultParams()
	}
	if o.CellSize == 0 {
		o.CellSize = grid.DefaultCellSize
	}
	if err := errors.ValidatePositive("cell size", o.CellSize); err != nil {
		return err
	}
	if o.MinImprovement == 0 {
		o.MinImprovement = steiner.DefaultMinImprovement
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender validates and sets defaults for the render stage.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = plan.DefaultScale
	}
	if o.CellSize == 0 {
		o.CellSize = grid.DefaultCellSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// NewBuilder returns the network builder selected by the options.
func (o *Options) NewBuilder() (duct.NetworkBuilder, error) {
	switch o.Strategy {
	case StrategySpine, "":
		var opts []spine.Option
		if o.GroupTolerance != nil {
			opts = append(opts, spine.WithGroupTolerance(*o.GroupTolerance))
		}
		return spine.New(opts...), nil
	case StrategySteiner:
		var opts []steiner.Option
		if o.MaxAdditions != nil {
			opts = append(opts, steiner.WithMaxAdditions(*o.MaxAdditions))
		}
		if o.MinImprovement != 0 {
			opts = append(opts, steiner.WithMinImprovement(o.MinImprovement))
		}
		return steiner.New(opts...), nil
	}
	return nil, ValidateStrategy(o.Strategy)
}

// BuildKeyOpts returns cache key options for the build stage. Defaults are
// resolved so that an explicit default and an omitted field share a key.
func (o *Options) BuildKeyOpts() cache.BuildKeyOpts {
	k := cache.BuildKeyOpts{
		Strategy:     o.Strategy,
		PressureDrop: o.Params.PressureDrop,
		AspectRatio:  o.Params.AspectRatio,
		Step:         o.Params.Step,
	}
	switch o.Strategy {
	case StrategySpine:
		k.GroupTolerance = spine.DefaultGroupTolerance
		if o.GroupTolerance != nil {
			k.GroupTolerance = max(*o.GroupTolerance, 0)
		}
	case StrategySteiner:
		k.MaxAdditions = steiner.DefaultMaxAdditions
		if o.MaxAdditions != nil {
			k.MaxAdditions = max(*o.MaxAdditions, 0)
		}
		k.MinImprovement = max(o.MinImprovement, 1)
	}
	return k
}

// RenderKeyOpts returns cache key options for one artifact.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:   format,
		CellSize: o.CellSize,
		Scale:    o.Scale,
		Labels:   o.Labels,
		Grid:     o.Grid,
		Title:    o.Title,
	}
}

// planOptions translates render options into plan renderer options.
func (o *Options) planOptions() []plan.Option {
	opts := []plan.Option{plan.WithScale(o.Scale)}
	if o.Labels {
		opts = append(opts, plan.WithLabels())
	}
	if o.Grid {
		opts = append(opts, plan.WithGrid())
	}
	if o.Title != "" {
		opts = append(opts, plan.WithTitle(o.Title))
	}
	return opts
}
