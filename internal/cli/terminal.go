package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// terminalCommand groups the terminal editing subcommands. Every edit
// clears the built segments; run "build" afterwards.
func (c *CLI) terminalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "terminal",
		Aliases: []string{"t"},
		Short:   "Place, edit and remove the inlet and outlets of a drawing",
	}

	cmd.AddCommand(c.terminalPlaceCommand("inlet", "Place or move the air inlet"))
	cmd.AddCommand(c.terminalPlaceCommand("outlet", "Add an air outlet"))
	cmd.AddCommand(c.terminalRemoveCommand())
	cmd.AddCommand(c.terminalFlowCommand())
	cmd.AddCommand(c.terminalUndoCommand())
	cmd.AddCommand(c.terminalClearCommand())
	cmd.AddCommand(c.terminalEqualizeCommand())

	return cmd
}

func (c *CLI) terminalPlaceCommand(kind, short string) *cobra.Command {
	var (
		at   string
		flow float64
	)

	cmd := &cobra.Command{
		Use:     kind + " FILE --at X,Y",
		Short:   short,
		Example: "  ductwork terminal " + kind + " level2.json --at -4,2 --flow 300",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseCell(at)
			if err != nil {
				return err
			}
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			place := net.AddOutlet
			if kind == "inlet" {
				place = net.SetInlet
			}
			if err := place(p, flow); err != nil {
				return err
			}
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}
			printSuccess("Placed %s at %s", kind, p)
			if kind == "outlet" && flow == 0 {
				printNextStep("Split the inlet flow", "ductwork terminal equalize "+args[0])
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&flow, "flow", 0, "airflow in m³/h")
	cellFlag(cmd, &at)

	return cmd
}

func (c *CLI) terminalRemoveCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:     "remove FILE --at X,Y",
		Aliases: []string{"rm"},
		Short:   "Remove the terminal at a cell",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseCell(at)
			if err != nil {
				return err
			}
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			if err := net.Remove(p); err != nil {
				return err
			}
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}
			printSuccess("Removed terminal at %s", p)
			return nil
		},
	}
	cellFlag(cmd, &at)

	return cmd
}

func (c *CLI) terminalFlowCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "flow FILE FLOW --at X,Y",
		Short: "Set the airflow of a terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseCell(at)
			if err != nil {
				return err
			}
			flow, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "flow %q is not a number", args[1])
			}
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			if t, ok := net.TerminalAt(p); ok && !t.IsInlet() {
				if avail := net.RemainingFlowExcept(p); flow > avail+1e-9 {
					printWarning("%.1f m³/h exceeds the %.1f m³/h still unassigned", flow, avail)
				}
			}
			if err := net.SetFlow(p, flow); err != nil {
				return err
			}
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}
			printSuccess("Set flow at %s to %g m³/h", p, flow)
			return nil
		},
	}
	cellFlag(cmd, &at)

	return cmd
}

func (c *CLI) terminalUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo FILE",
		Short: "Remove the most recently placed terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			t, ok := net.Undo()
			if !ok {
				printInfo("Nothing to undo")
				return nil
			}
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", t)
			return nil
		},
	}
}

func (c *CLI) terminalClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear FILE",
		Short: "Remove every terminal and segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			net.Clear()
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}
			printSuccess("Cleared drawing")
			return nil
		},
	}
}

func (c *CLI) terminalEqualizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "equalize FILE",
		Short: "Split the inlet flow evenly over the outlets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			if err := net.DistributeEqual(); err != nil {
				return err
			}
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}
			outlets := net.Outlets()
			printSuccess("Assigned %g m³/h to each of %d outlets", outlets[0].Flow, len(outlets))
			return nil
		},
	}
}

// cellFlag registers the required --at flag. A flag value may start with
// '-', a positional argument may not.
func cellFlag(cmd *cobra.Command, at *string) {
	cmd.Flags().StringVar(at, "at", "", "grid cell as X,Y (may be negative)")
	_ = cmd.MarkFlagRequired("at")
}

// parseCell parses integer grid coordinates written as X,Y.
func parseCell(s string) (grid.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Point{}, errors.New(errors.ErrCodeInvalidInput, "cell %q: want X,Y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return grid.Point{}, errors.New(errors.ErrCodeInvalidInput, "x %q is not an integer", xs)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return grid.Point{}, errors.New(errors.ErrCodeInvalidInput, "y %q is not an integer", ys)
	}
	return grid.Pt(x, y), nil
}
