package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/pipeline"
	"github.com/matzehuels/ductwork/pkg/render/plan"
)

// renderCommand creates the render command, which writes the plan and
// topology views of a built drawing.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formats  []string
		output   string
		scale    float64
		labels   bool
		showGrid bool
		title    string
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a built drawing as SVG, PNG, PDF, Graphviz or JSON",
		Long: `Render writes one file per format next to the drawing (or under --output).

Formats:
  svg       to-scale floor plan
  png, pdf  the plan, converted with rsvg-convert
  topology  flow graph laid out by Graphviz, as SVG
  dot       Graphviz source of the flow graph
  json      segments and material estimate`,
		Example: `  ductwork render level2.json
  ductwork render level2.json -f svg,topology --labels --grid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			if len(net.Segments()) == 0 {
				return errors.New(errors.ErrCodeIncompleteTopology, "drawing has no segments (run: ductwork build %s)", args[0])
			}

			if title == "" && !cmd.Flags().Changed("title") {
				title = d.Name
			}
			opts := pipeline.Options{
				Formats:  formats,
				CellSize: net.CellSize(),
				Scale:    scale,
				Labels:   labels,
				Grid:     showGrid,
				Title:    title,
				Refresh:  c.noCache,
				Logger:   c.Logger,
			}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}

			runner := c.newRunner(ctx)
			defer runner.Close()

			prog := newProgress(c.Logger)
			var spin *Spinner
			if slices.Contains(opts.Formats, pipeline.FormatPNG) || slices.Contains(opts.Formats, pipeline.FormatPDF) {
				spin = newSpinner(ctx, os.Stderr, "Converting plan...")
				spin.Start()
			}
			artifacts, cached, err := runner.RenderWithCacheInfo(ctx, plan.FromNetwork(net), opts)
			if spin != nil {
				if spin.Cancelled() {
					spin.Stop()
					return ctx.Err()
				}
				if err != nil {
					spin.StopWithError("Conversion failed")
				} else {
					spin.Stop()
				}
			}
			if err != nil {
				return err
			}

			base := renderBase(args[0], output)
			if dir := filepath.Dir(base); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
				}
			}
			for _, format := range opts.Formats {
				path := base + formatSuffix(format)
				if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
				}
				printFile(path)
			}
			prog.done(fmt.Sprintf("Rendered %d files", len(opts.Formats)))
			if cached {
				printDetail("from cache")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{pipeline.FormatSVG}, "output formats: svg, png, pdf, topology, dot, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path without extension, or a directory ending in /")
	cmd.Flags().Float64Var(&scale, "scale", plan.DefaultScale, "plan scale in px per meter")
	cmd.Flags().BoolVar(&labels, "labels", false, "label runs with their size and flow")
	cmd.Flags().BoolVar(&showGrid, "grid", false, "draw the grid")
	cmd.Flags().StringVar(&title, "title", "", "plan title (default: drawing name)")

	return cmd
}

// renderBase returns the output path without extension.
func renderBase(input, output string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	switch {
	case output == "":
		return strings.TrimSuffix(input, filepath.Ext(input))
	case strings.HasSuffix(output, "/"):
		return filepath.Join(output, stem)
	}
	return output
}

// formatSuffix maps a format to its file suffix. Suffixes differ where two
// formats share an extension.
func formatSuffix(format string) string {
	switch format {
	case pipeline.FormatTopology:
		return ".topology.svg"
	case pipeline.FormatJSON:
		return ".report.json"
	}
	return "." + format
}
