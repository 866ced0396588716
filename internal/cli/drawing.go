package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/drawing"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
)

// newCommand creates the new command, which writes an empty drawing file.
func (c *CLI) newCommand() *cobra.Command {
	var (
		output   string
		cellSize float64
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create an empty drawing",
		Example: `  ductwork new "Level 2 supply" -o level2.json
  ductwork new lobby --cell 0.25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0] + ".json"
			}
			if !force {
				if _, err := os.Stat(output); err == nil {
					return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", output)
				}
			}
			if !cmd.Flags().Changed("cell") {
				cellSize = c.cfg.Grid.CellSize
			}
			if err := errors.ValidatePositive("cell size", cellSize); err != nil {
				return err
			}

			d := drawing.New(args[0], cellSize)
			d.Params = c.cfg.Sizing
			if err := drawing.Save(d, output); err != nil {
				return err
			}
			c.Logger.Debug("created drawing", "id", d.ID, "cell", cellSize)

			printSuccess("Created drawing %s", StyleHighlight.Render(d.Name))
			printFile(output)
			printNextStep("Place the inlet", fmt.Sprintf("ductwork terminal inlet %s --at 0,0 --flow 1200", output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default NAME.json)")
	cmd.Flags().Float64Var(&cellSize, "cell", 0, "grid cell size in meters (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// showCommand creates the show command, which summarizes a drawing.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the terminals, segments and material of a drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return drawing.Write(d, os.Stdout)
			}
			printDrawing(d, net)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw drawing document")

	return cmd
}

// printDrawing prints the summary shown by "show" and after edits.
func printDrawing(d *drawing.Drawing, net *duct.Network) {
	fmt.Println(StyleTitle.Render(d.Name))
	printKeyValue("ID", d.ID)
	printKeyValue("Cell size", fmt.Sprintf("%g m", net.CellSize()))
	if d.Strategy != "" {
		printKeyValue("Strategy", d.Strategy)
	}
	printKeyValue("Sizing", fmt.Sprintf("%g mmAq/m, ratio %g, step %g mm",
		d.Params.PressureDrop, d.Params.AspectRatio, d.Params.Step))

	ts := net.Terminals()
	if len(ts) == 0 {
		printNewline()
		printInfo("No terminals placed")
		return
	}
	printNewline()
	fmt.Println(terminalTable(ts))
	if rest := net.RemainingFlow(); len(net.Outlets()) > 0 && (rest > duct.FlowTolerance || rest < -duct.FlowTolerance) {
		printWarning("%.1f m³/h of inlet flow not assigned to outlets", rest)
	}

	segs := net.Segments()
	if len(segs) == 0 {
		printNewline()
		printInfo("Network not built")
		return
	}
	printNewline()
	fmt.Println(segmentTable(segs, net.CellSize()))
	printNewline()
	printMaterial(net.Material())
}
