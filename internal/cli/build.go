package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/drawing"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/pipeline"
)

// buildFlags holds the flags shared by build and edit.
type buildFlags struct {
	strategy       string
	drop           float64
	ratio          float64
	step           float64
	groupTolerance int
	maxAdditions   int
	minImprovement int
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "network builder: spine or steiner (default: the drawing's, then spine)")
	cmd.Flags().Float64Var(&f.drop, "dp", 0, "pressure drop in mmAq/m")
	cmd.Flags().Float64Var(&f.ratio, "ratio", 0, "aspect ratio of the rectangles: 1, 2, 3, 4, 6 or 8")
	cmd.Flags().Float64Var(&f.step, "step", 0, "rounding step in mm")
	cmd.Flags().IntVar(&f.groupTolerance, "tolerance", 0, "spine: row grouping tolerance in cells")
	cmd.Flags().IntVar(&f.maxAdditions, "max-junctions", 0, "steiner: maximum added junctions (0 for a plain spanning tree)")
	cmd.Flags().IntVar(&f.minImprovement, "min-gain", 0, "steiner: minimum length gain in cells to keep a junction")
}

// options merges config defaults, the drawing's own settings and any
// flags set on cmd, in increasing precedence.
func (f *buildFlags) options(c *CLI, cmd *cobra.Command, d *drawing.Drawing, cellSize float64) pipeline.Options {
	opts := c.cfg.Options()
	if d.Params.PressureDrop > 0 {
		opts.Params = d.Params
	}
	opts.CellSize = cellSize
	opts.Strategy = d.Strategy
	fl := cmd.Flags()
	if fl.Changed("strategy") {
		opts.Strategy = f.strategy
	}
	if fl.Changed("dp") {
		opts.Params.PressureDrop = f.drop
	}
	if fl.Changed("ratio") {
		opts.Params.AspectRatio = f.ratio
	}
	if fl.Changed("step") {
		opts.Params.Step = f.step
	}
	if fl.Changed("tolerance") {
		opts.GroupTolerance = &f.groupTolerance
	}
	if fl.Changed("max-junctions") {
		opts.MaxAdditions = &f.maxAdditions
	}
	if fl.Changed("min-gain") {
		opts.MinImprovement = f.minImprovement
	}
	opts.Refresh = c.noCache
	opts.Logger = c.Logger
	return opts
}

// buildCommand creates the build command, which routes and sizes the
// network of a drawing file in place.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags buildFlags
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "build FILE",
		Short: "Route and size the duct network of a drawing",
		Long: `Build connects the inlet to every outlet and sizes each run for the air
it carries. The spine strategy lays a trunk with branches per outlet row;
the steiner strategy finds a short rectilinear tree with added junctions.

Results are cached by terminal layout and build settings.`,
		Example: `  ductwork build level2.json
  ductwork build level2.json --strategy steiner --max-junctions 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}

			opts := flags.options(c, cmd, d, net.CellSize())
			if err := opts.ValidateForBuild(); err != nil {
				return err
			}

			runner := c.newRunner(ctx)
			defer runner.Close()

			res, cached, err := runner.BuildWithCacheInfo(ctx, net.Input(opts.Params), opts)
			if err != nil {
				return err
			}
			net.Replace(res.Segments)

			d.Params = opts.Params
			d.Strategy = opts.Strategy
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}

			printSuccess("Built %s network", opts.Strategy)
			printStats(len(res.Segments), res.Skipped, net.Material().Length, cached)
			for _, w := range res.Warnings {
				printWarning("%s", errors.UserMessage(w))
			}
			if res.Skipped > 0 {
				printWarning("%d segments carry no air and were not sized", res.Skipped)
			}
			if !quiet {
				printNewline()
				fmt.Println(segmentTable(net.Segments(), net.CellSize()))
				printNewline()
				printMaterial(net.Material())
			}
			printNextStep("Render the plan", "ductwork render "+args[0])
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the segment table")

	return cmd
}
