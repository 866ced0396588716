package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/duct/sizing"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/load"
)

// sizeCommand creates the size command for a single flow.
func (c *CLI) sizeCommand() *cobra.Command {
	var (
		drop, ratio, step float64
		asJSON            bool
	)

	cmd := &cobra.Command{
		Use:   "size FLOW",
		Short: "Size a duct for an airflow in m³/h",
		Long: `Size computes the circular and rectangular duct that carries FLOW (m³/h)
at the configured pressure drop. Unset flags come from the [sizing] section
of the config file.`,
		Example: `  ductwork size 1200
  ductwork size 800 --dp 0.08 --ratio 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "flow %q is not a number", args[0])
			}
			p := c.cfg.Sizing
			if cmd.Flags().Changed("dp") {
				p.PressureDrop = drop
			}
			if cmd.Flags().Changed("ratio") {
				p.AspectRatio = ratio
			}
			if cmd.Flags().Changed("step") {
				p.Step = step
			}
			if err := p.Validate(); err != nil {
				return err
			}

			res, err := sizing.Size(flow, p.PressureDrop, p.AspectRatio, p.Step)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(res)
			}

			printSuccess("%s", res.Label())
			printKeyValue("Flow", fmt.Sprintf("%g m³/h", res.Flow))
			printKeyValue("Pressure drop", fmt.Sprintf("%g mmAq/m", res.DropRate))
			printKeyValue("Diameter", fmt.Sprintf("%.1f mm (Ø%.0f)", res.Diameter, res.RoundedDiameter))
			printKeyValue("Rectangle", fmt.Sprintf("%.0f x %.0f mm", res.Rect.Big, res.Rect.Small))
			return nil
		},
	}

	cmd.Flags().Float64Var(&drop, "dp", 0, "pressure drop in mmAq/m")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "aspect ratio of the rectangle: 1, 2, 3, 4, 6 or 8")
	cmd.Flags().Float64Var(&step, "step", 0, "rounding step in mm")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

// roomsFile is the TOML layout read by "supply --file".
type roomsFile struct {
	Temperatures load.Temperatures `toml:"temperatures"`
	Rooms        []load.Room       `toml:"room"`
}

// supplyCommand creates the supply command, which turns room loads into
// supply airflows.
func (c *CLI) supplyCommand() *cobra.Command {
	var (
		file   string
		rooms  []string
		temps  load.Temperatures
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "supply",
		Short: "Compute supply airflow per room from cooling loads",
		Long: `Supply computes the supply airflow and diffuser count of each room.

Rooms are given as NAME:AREA:NORM[:EQUIP] with loads in W/m², or read from a
TOML file with a [temperatures] table and [[room]] entries.`,
		Example: `  ductwork supply --room office:42:80:20 --room meeting:18:100
  ductwork supply --file rooms.toml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in roomsFile
			if file != "" {
				md, err := toml.DecodeFile(file, &in)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", file)
				}
				if keys := md.Undecoded(); len(keys) > 0 {
					return errors.New(errors.ErrCodeInvalidFormat, "%s: unknown key %q", file, keys[0].String())
				}
			}
			if cmd.Flags().Changed("indoor") || file == "" {
				in.Temperatures.Indoor = temps.Indoor
			}
			if cmd.Flags().Changed("supply-temp") || file == "" {
				in.Temperatures.Supply = temps.Supply
			}
			for _, spec := range rooms {
				r, err := parseRoom(spec)
				if err != nil {
					return err
				}
				in.Rooms = append(in.Rooms, r)
			}
			if len(in.Rooms) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "no rooms given (use --room or --file)")
			}

			s, err := load.Compute(in.Rooms, in.Temperatures)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(s)
			}
			fmt.Println(scheduleTable(s))
			printDetail("ΔT = %g K", s.Temperatures.Indoor-s.Temperatures.Supply)
			printNextStep("Place terminals", "ductwork terminal inlet FILE --at X,Y --flow "+strconv.Itoa(s.Total))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML file with rooms and temperatures")
	cmd.Flags().StringArrayVar(&rooms, "room", nil, "room as NAME:AREA:NORM[:EQUIP] (repeatable)")
	cmd.Flags().Float64Var(&temps.Indoor, "indoor", 26, "indoor design temperature in °C")
	cmd.Flags().Float64Var(&temps.Supply, "supply-temp", 16, "supply air temperature in °C")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the schedule as JSON")

	return cmd
}

// parseRoom parses NAME:AREA:NORM[:EQUIP].
func parseRoom(spec string) (load.Room, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return load.Room{}, errors.New(errors.ErrCodeInvalidInput, "room %q: want NAME:AREA:NORM[:EQUIP]", spec)
	}
	nums := make([]float64, 3)
	for i, s := range parts[1:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return load.Room{}, errors.New(errors.ErrCodeInvalidInput, "room %q: %q is not a number", spec, s)
		}
		nums[i] = v
	}
	return load.Room{Name: parts[0], Area: nums[0], Norm: nums[1], Equip: nums[2]}, nil
}

// writeJSON prints v as indented JSON to stdout.
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
