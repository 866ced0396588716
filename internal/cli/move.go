package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/relocate"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/observability"
)

// moveCommand creates the move command, which drags one run of a built
// network across its axis.
func (c *CLI) moveCommand() *cobra.Command {
	var (
		delta  float64
		meters bool
	)

	cmd := &cobra.Command{
		Use:   "move FILE INDEX --by DELTA",
		Short: "Shift a duct run sideways, keeping it connected",
		Long: `Move drags the run at INDEX (see "ductwork show") by DELTA grid cells
across its own axis: horizontal runs move up or down, vertical runs left or
right, with a negative DELTA moving west or north. Connected runs stretch along; a run pinned at a terminal is bent into
an L. The move is rejected if it would disconnect a terminal.

Sizes are kept. Run "build" to reroute from scratch.`,
		Example: `  ductwork move level2.json 3 --by 2
  ductwork move level2.json 0 --by -1.5 --meters`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "index %q is not an integer", args[1])
			}

			d, net, err := c.openDrawing(args[0])
			if err != nil {
				return err
			}
			offset := delta
			if !meters {
				offset *= net.CellSize()
			}

			rep, err := moveSegment(cmd.Context(), net, index, offset)
			if err != nil {
				return err
			}
			if rep.Delta.X == 0 && rep.Delta.Y == 0 {
				printInfo("Offset is less than half a cell, nothing moved")
				return nil
			}
			if err := c.saveDrawing(d, net, args[0]); err != nil {
				return err
			}

			printSuccess("Moved run %d by %s", index, rep.Delta)
			printDetail("%d moved · %d held · %d bent · %d removed", rep.Moved, rep.Held, rep.Split, rep.Collapsed)
			printKeyValue("Run now at", fmt.Sprintf("index %d", rep.Index))
			return nil
		},
	}

	cmd.Flags().Float64Var(&delta, "by", 0, "offset in grid cells, negative to move west or north")
	cmd.Flags().BoolVar(&meters, "meters", false, "DELTA is in meters instead of grid cells")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

// moveSegment shifts the run at index by meters and reports the outcome to
// the pipeline hooks.
func moveSegment(ctx context.Context, net *duct.Network, index int, meters float64) (relocate.Report, error) {
	rep, err := relocate.Shift(net, index, meters)
	observability.Pipeline().OnRelocate(ctx, rep.Moved, rep.Split, rep.Collapsed, err)
	return rep, err
}
