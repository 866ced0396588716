package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/load"
	"github.com/matzehuels/ductwork/pkg/store"
)

var (
	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// newTable returns a rounded table with the shared header and cell styles.
// Columns listed in numeric are right-aligned.
func newTable(headers []string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			if right[col] {
				return styleTableCell.Align(lipgloss.Right)
			}
			return styleTableCell
		})
}

// segmentTable lists every run with its flow and size.
func segmentTable(segs []duct.Segment, cellSize float64) string {
	t := newTable([]string{"#", "From", "To", "Len (m)", "Flow (m³/h)", "Size"}, 0, 3, 4)
	for i, s := range segs {
		size := StyleWarning.Render("unsized")
		if s.Sized() {
			size = s.Label
		}
		t.Row(
			strconv.Itoa(i),
			s.A.String(),
			s.B.String(),
			fmt.Sprintf("%.2f", s.LengthMeters(cellSize)),
			fmt.Sprintf("%.0f", s.Flow),
			size,
		)
	}
	return t.Render()
}

// terminalTable lists the inlet and outlets.
func terminalTable(ts []duct.Terminal) string {
	t := newTable([]string{"Kind", "Cell", "Flow (m³/h)"}, 2)
	for _, term := range ts {
		t.Row(term.Kind.String(), term.Pos.String(), fmt.Sprintf("%g", term.Flow))
	}
	return t.Render()
}

// scheduleTable renders a supply air schedule with a total row.
func scheduleTable(s load.Schedule) string {
	t := newTable([]string{"Room", "Area (m²)", "Load (W/m²)", "Flow (m³/h)", "Diffusers", "Per outlet"}, 1, 2, 3, 4, 5)
	for _, r := range s.Rows {
		perOutlet := "-"
		if r.Diffusers > 0 {
			perOutlet = fmt.Sprintf("%.0f", r.PerOutlet)
		}
		t.Row(
			r.Room.Name,
			fmt.Sprintf("%g", r.Room.Area),
			fmt.Sprintf("%g", r.Room.Norm+r.Room.Equip),
			strconv.Itoa(r.Flow),
			strconv.Itoa(r.Diffusers),
			perOutlet,
		)
	}
	t.Row("Total", "", "", strconv.Itoa(s.Total), "", "")
	return t.Render()
}

// drawingTable lists stored drawings.
func drawingTable(items []store.Summary) string {
	t := newTable([]string{"ID", "Name", "Strategy", "Updated"})
	for _, s := range items {
		t.Row(s.ID, s.Name, s.Strategy, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return t.Render()
}

// printMaterial prints the sheet-metal estimate.
func printMaterial(m duct.Material) {
	printKeyValue("Length", fmt.Sprintf("%.2f m", m.Length))
	printKeyValue("Rect sheet", fmt.Sprintf("%.2f m²", m.RectArea))
	printKeyValue("Round sheet", fmt.Sprintf("%.2f m²", m.RoundArea))
}
