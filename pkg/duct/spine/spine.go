package spine

import (
	"cmp"
	"slices"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// DefaultGroupTolerance is the row distance, in grid cells, within which
// outlets share a branch (one cell = 0.5 m on the default grid).
const DefaultGroupTolerance = 1

// Name identifies the builder in logs, cache keys and the CLI.
const Name = "spine"

// Builder is the spine-and-branch [duct.NetworkBuilder].
type Builder struct {
	groupTolerance int
}

// Option configures a Builder.
type Option func(*Builder)

// WithGroupTolerance sets the row tolerance in grid cells. Negative values
// are treated as zero (only identical rows are grouped).
func WithGroupTolerance(cells int) Option {
	return func(b *Builder) {
		b.groupTolerance = max(cells, 0)
	}
}

// New returns a builder with the given options applied.
func New(opts ...Option) *Builder {
	b := &Builder{groupTolerance: DefaultGroupTolerance}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements [duct.NetworkBuilder].
func (b *Builder) Name() string { return Name }

// GroupTolerance returns the configured row tolerance in cells.
func (b *Builder) GroupTolerance() int { return b.groupTolerance }

// group is a set of outlets on (nearly) the same row and side.
type group struct {
	outlets []duct.Terminal // ordered by distance from the inlet column
	row     int             // Y of the topmost outlet
	col     int             // X of the outlet nearest the inlet column
	flow    float64
}

// Build implements [duct.NetworkBuilder]. Segments are emitted in a fixed
// order: east spine, west spine, east branches, west branches, then stubs
// for outlets in the inlet column.
func (b *Builder) Build(in duct.Input) (duct.Result, error) {
	if err := duct.RequireTopology(in); err != nil {
		return duct.Result{}, err
	}
	if err := duct.RequireInletFlow(in); err != nil {
		return duct.Result{}, err
	}
	if err := in.Params.Validate(); err != nil {
		return duct.Result{}, err
	}

	e := emitter{params: in.Params}
	if w := duct.CheckBalance(in); w != nil {
		e.res.Warnings = append(e.res.Warnings, w)
	}

	origin := in.Inlet.Pos
	var west, east, center []duct.Terminal
	for _, o := range in.Outlets {
		switch grid.SideOf(origin, o.Pos) {
		case grid.SideWest:
			west = append(west, o)
		case grid.SideEast:
			east = append(east, o)
		case grid.SideCenter:
			center = append(center, o)
		}
	}

	eastGroups := b.groups(origin, east)
	westGroups := b.groups(origin, west)

	if err := e.spine(origin, eastGroups); err != nil {
		return duct.Result{}, err
	}
	if err := e.spine(origin, westGroups); err != nil {
		return duct.Result{}, err
	}
	for _, g := range eastGroups {
		if err := e.branch(origin.Y, g); err != nil {
			return duct.Result{}, err
		}
	}
	for _, g := range westGroups {
		if err := e.branch(origin.Y, g); err != nil {
			return duct.Result{}, err
		}
	}
	for _, o := range center {
		if err := e.add(origin, o.Pos, o.Flow); err != nil {
			return duct.Result{}, err
		}
	}
	return e.res, nil
}

// groups partitions one side's outlets by row. Outlets are scanned by
// ascending Y and join the current group while within tolerance of the
// group's first row.
func (b *Builder) groups(origin grid.Point, side []duct.Terminal) []group {
	if len(side) == 0 {
		return nil
	}
	sorted := slices.Clone(side)
	slices.SortStableFunc(sorted, func(p, q duct.Terminal) int {
		return cmp.Compare(p.Pos.Y, q.Pos.Y)
	})

	var out []group
	cur := []duct.Terminal{sorted[0]}
	for _, o := range sorted[1:] {
		if abs(o.Pos.Y-cur[0].Pos.Y) <= b.groupTolerance {
			cur = append(cur, o)
			continue
		}
		out = append(out, newGroup(origin, cur))
		cur = []duct.Terminal{o}
	}
	return append(out, newGroup(origin, cur))
}

func newGroup(origin grid.Point, outlets []duct.Terminal) group {
	g := group{row: outlets[0].Pos.Y, flow: duct.SumFlow(outlets)}
	g.outlets = slices.Clone(outlets)
	slices.SortStableFunc(g.outlets, func(p, q duct.Terminal) int {
		return cmp.Compare(abs(p.Pos.X-origin.X), abs(q.Pos.X-origin.X))
	})
	g.col = g.outlets[0].Pos.X
	return g
}

// emitter accumulates sized segments and skipped counts for one build.
type emitter struct {
	params duct.Params
	res    duct.Result
}

// add sizes and appends a segment from a to b. Zero-length runs are dropped
// and rejected sizing calls only skip the segment.
func (e *emitter) add(a, b grid.Point, flow float64) error {
	if a == b {
		return nil
	}
	s, err := duct.NewSizedSegment(a, b, flow, e.params)
	if err != nil {
		if errors.IsRecoverable(err) {
			e.res.Skipped++
			return nil
		}
		return err
	}
	e.res.Segments = append(e.res.Segments, s)
	return nil
}

// spine emits the trunk for one side. Nodes are the inlet column and every
// group column; each run carries the flow of all groups strictly beyond its
// upstream node. Groups sharing a column add up.
func (e *emitter) spine(origin grid.Point, groups []group) error {
	if len(groups) == 0 {
		return nil
	}
	demand := make(map[int]float64, len(groups))
	for _, g := range groups {
		demand[abs(g.col-origin.X)] += g.flow
	}
	dists := make([]int, 0, len(demand)+1)
	dists = append(dists, 0)
	for d := range demand {
		dists = append(dists, d)
	}
	slices.Sort(dists)
	dists = slices.Compact(dists)

	dir := 1
	if groups[0].col < origin.X {
		dir = -1
	}
	for i := 0; i+1 < len(dists); i++ {
		var flow float64
		for _, d := range dists[i+1:] {
			flow += demand[d]
		}
		a := grid.Pt(origin.X+dir*dists[i], origin.Y)
		b := grid.Pt(origin.X+dir*dists[i+1], origin.Y)
		if err := e.add(a, b, flow); err != nil {
			return err
		}
	}
	return nil
}

// branch emits the riser, distributors and stubs of one group.
func (e *emitter) branch(spineRow int, g group) error {
	if len(g.outlets) == 1 {
		o := g.outlets[0]
		return e.add(grid.Pt(o.Pos.X, spineRow), o.Pos, o.Flow)
	}
	if err := e.add(grid.Pt(g.col, spineRow), grid.Pt(g.col, g.row), g.flow); err != nil {
		return err
	}
	for i, o := range g.outlets {
		if i+1 < len(g.outlets) {
			remaining := duct.SumFlow(g.outlets[i+1:])
			next := g.outlets[i+1]
			if err := e.add(grid.Pt(o.Pos.X, g.row), grid.Pt(next.Pos.X, g.row), remaining); err != nil {
				return err
			}
		}
		if err := e.add(grid.Pt(o.Pos.X, g.row), o.Pos, o.Flow); err != nil {
			return err
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
