package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/drawing"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/relocate"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
	"github.com/matzehuels/ductwork/pkg/observability"
)

// Editor styles
var (
	editRunStyle      = lipgloss.NewStyle().Foreground(colorGray)
	editSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	editInletStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	editOutletStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	editHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// editCommand creates the edit command, an interactive editor for moving
// the runs of a built network.
func (c *CLI) editCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Interactively move duct runs in the terminal",
		Long: `Edit shows the network on its grid. Select a run and drag it sideways
with the arrow keys; connected runs follow and terminals stay in place.

Keys:
  tab, j / shift+tab, k   select next / previous run
  arrows                  drag the selected run one cell
  enter                   keep the drag
  esc                     undo the drag
  r                       rebuild the network
  s                       save
  q                       quit`,
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

			m := newEditorModel(ctx, d, net)
			m.rebuild = func() (duct.Result, error) {
				d.Params, d.Strategy = opts.Params, opts.Strategy
				return net.Rebuild(runner.Builder(ctx, opts), opts.Params)
			}
			m.save = func() error {
				return c.saveDrawing(d, net, args[0])
			}

			final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(editorModel); ok && fm.dirty {
				printWarning("Quit with unsaved changes")
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// editorModel is the bubbletea model of the run editor.
type editorModel struct {
	ctx     context.Context
	name    string
	net     *duct.Network
	gesture *relocate.Gesture

	rebuild func() (duct.Result, error)
	save    func() error

	selected int
	status   string
	failed   bool
	dirty    bool
}

func newEditorModel(ctx context.Context, d *drawing.Drawing, net *duct.Network) editorModel {
	m := editorModel{ctx: ctx, name: d.Name, net: net}
	if len(net.Segments()) == 0 {
		m.status = "No runs yet, press r to build"
	}
	return m
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	n := len(m.net.Segments())
	switch key.String() {
	case "q", "ctrl+c":
		if m.gesture != nil {
			m.gesture.Cancel()
			m.gesture = nil
		}
		return m, tea.Quit
	case "tab", "j":
		if m.gesture == nil && n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case "shift+tab", "k":
		if m.gesture == nil && n > 0 {
			m.selected = (m.selected + n - 1) % n
		}
	case "up":
		m = m.drag(0, -1)
	case "down":
		m = m.drag(0, 1)
	case "left":
		m = m.drag(-1, 0)
	case "right":
		m = m.drag(1, 0)
	case "enter":
		m = m.commit()
	case "esc":
		if m.gesture != nil {
			m.gesture.Cancel()
			m.selected = min(m.selected, max(len(m.net.Segments())-1, 0))
			m.gesture = nil
			m.setStatus("Drag undone", false)
		}
	case "r":
		if m.gesture != nil {
			m.gesture.Cancel()
			m.gesture = nil
		}
		res, err := m.rebuild()
		if err != nil {
			m.setStatus(errors.UserMessage(err), true)
			break
		}
		m.selected = 0
		m.dirty = true
		msg := fmt.Sprintf("Built %d runs", len(res.Segments))
		if len(res.Warnings) > 0 {
			msg += " · " + errors.UserMessage(res.Warnings[0])
		}
		m.setStatus(msg, len(res.Warnings) > 0)
	case "s":
		if m.gesture != nil {
			m = m.commit()
			if m.failed {
				break
			}
		}
		if err := m.save(); err != nil {
			m.setStatus(errors.UserMessage(err), true)
			break
		}
		m.dirty = false
		m.setStatus("Saved", false)
	}
	return m, nil
}

// drag moves the selected run by one cell in the direction (dx, dy).
// Directions along the run's own axis are ignored.
func (m editorModel) drag(dx, dy int) editorModel {
	segs := m.net.Segments()
	if m.selected >= len(segs) {
		return m
	}
	o := segs[m.selected].Orientation
	if (o == grid.Horizontal && dy == 0) || (o == grid.Vertical && dx == 0) {
		return m
	}
	if m.gesture == nil {
		g, err := relocate.Begin(m.net, m.selected)
		if err != nil {
			m.setStatus(errors.UserMessage(err), true)
			return m
		}
		m.gesture = g
	}
	cell := m.net.CellSize()
	if _, err := m.gesture.Drag(float64(dx)*cell, float64(dy)*cell); err != nil {
		m.gesture.Cancel()
		m.gesture = nil
		m.setStatus(errors.UserMessage(err), true)
		return m
	}
	m.selected = m.gesture.Index()
	rep := m.gesture.Report()
	m.setStatus(fmt.Sprintf("Dragging by %s · enter to keep, esc to undo", rep.Delta), false)
	return m
}

func (m editorModel) commit() editorModel {
	if m.gesture == nil {
		return m
	}
	rep, err := m.gesture.Commit()
	observability.Pipeline().OnRelocate(m.ctx, rep.Moved, rep.Split, rep.Collapsed, err)
	m.gesture = nil
	if err != nil {
		m.selected = min(m.selected, max(len(m.net.Segments())-1, 0))
		m.setStatus(errors.UserMessage(err)+" · drag undone", true)
		return m
	}
	m.selected = rep.Index
	m.dirty = true
	m.setStatus(fmt.Sprintf("Moved by %s · %d bent, %d removed", rep.Delta, rep.Split, rep.Collapsed), false)
	return m
}

func (m *editorModel) setStatus(s string, failed bool) {
	m.status, m.failed = s, failed
}

func (m editorModel) View() string {
	var b strings.Builder

	title := m.name
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(editHelpStyle.Render("tab/j/k select  arrows drag  ⏎ keep  esc undo  r build  s save  q quit"))
	b.WriteString("\n\n")

	segs := m.net.Segments()
	b.WriteString(renderCanvas(newCanvas(m.net.Terminals(), segs, m.selected)))
	b.WriteString("\n")

	if m.selected < len(segs) {
		s := segs[m.selected]
		size := "unsized"
		if s.Sized() {
			size = s.Label
		}
		b.WriteString(StyleDim.Render(fmt.Sprintf("run %d/%d  %s→%s  %.0f m³/h  %s",
			m.selected+1, len(segs), s.A, s.B, s.Flow, size)))
		b.WriteString("\n")
	}
	if m.status != "" {
		style := StyleSuccess
		if m.failed {
			style = StyleWarning
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

// cellKind says what occupies one character of the canvas.
type cellKind int

const (
	cellEmpty cellKind = iota
	cellRun
	cellSelected
	cellInlet
	cellOutlet
)

type canvasCell struct {
	r    rune
	kind cellKind
}

// canvas is a character grid of the network. Every grid column takes two
// characters: the point itself and the run to the next point.
type canvas struct {
	origin grid.Point
	cells  [][]canvasCell
}

func newCanvas(ts []duct.Terminal, segs []duct.Segment, selected int) canvas {
	var pts []grid.Point
	for _, t := range ts {
		pts = append(pts, t.Pos)
	}
	for _, s := range segs {
		pts = append(pts, s.A, s.B)
	}
	if len(pts) == 0 {
		return canvas{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = grid.Pt(min(lo.X, p.X), min(lo.Y, p.Y))
		hi = grid.Pt(max(hi.X, p.X), max(hi.Y, p.Y))
	}

	c := canvas{origin: lo, cells: make([][]canvasCell, hi.Y-lo.Y+1)}
	for y := range c.cells {
		c.cells[y] = make([]canvasCell, 2*(hi.X-lo.X)+1)
		for x := range c.cells[y] {
			c.cells[y][x] = canvasCell{r: ' '}
		}
	}

	adj := duct.BuildAdjacency(segs)
	for i, s := range segs {
		kind := cellRun
		if i == selected {
			kind = cellSelected
		}
		a, b := s.A, s.B
		if grid.Less(b, a) {
			a, b = b, a
		}
		if s.Orientation == grid.Horizontal {
			for x := 2 * (a.X - lo.X); x <= 2*(b.X-lo.X); x++ {
				c.set(x, a.Y-lo.Y, '─', kind)
			}
		} else {
			for y := a.Y - lo.Y; y <= b.Y-lo.Y; y++ {
				c.set(2*(a.X-lo.X), y, '│', kind)
			}
		}
	}
	for p, idx := range adj {
		if len(idx) > 2 || (len(idx) == 2 && segs[idx[0]].Orientation != segs[idx[1]].Orientation) {
			c.set(2*(p.X-lo.X), p.Y-lo.Y, '+', c.at(2*(p.X-lo.X), p.Y-lo.Y).kind)
		}
	}
	for _, t := range ts {
		if t.IsInlet() {
			c.set(2*(t.Pos.X-lo.X), t.Pos.Y-lo.Y, 'I', cellInlet)
		} else {
			c.set(2*(t.Pos.X-lo.X), t.Pos.Y-lo.Y, 'o', cellOutlet)
		}
	}
	return c
}

func (c canvas) at(x, y int) canvasCell { return c.cells[y][x] }

// set writes r at (x, y). A selected run is never drawn over by another run.
func (c canvas) set(x, y int, r rune, kind cellKind) {
	cur := c.cells[y][x]
	if cur.kind == cellSelected && kind == cellRun {
		return
	}
	c.cells[y][x] = canvasCell{r: r, kind: kind}
}

// String returns the canvas without styling.
func (c canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		for _, cell := range row {
			b.WriteRune(cell.r)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderCanvas(c canvas) string {
	var b strings.Builder
	for _, row := range c.cells {
		for _, cell := range row {
			s := string(cell.r)
			switch cell.kind {
			case cellRun:
				s = editRunStyle.Render(s)
			case cellSelected:
				s = editSelectedStyle.Render(s)
			case cellInlet:
				s = editInletStyle.Render(s)
			case cellOutlet:
				s = editOutletStyle.Render(s)
			}
			b.WriteString(s)
		}
		b.WriteString("\n")
	}
	return b.String()
}
