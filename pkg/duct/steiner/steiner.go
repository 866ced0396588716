package steiner

import (
	"slices"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// Defaults for the junction search.
const (
	DefaultMaxAdditions   = 25
	DefaultMinImprovement = 1 // grid cells
)

// Name identifies the router in logs, cache keys and the CLI.
const Name = "steiner"

// Router is the Steiner-tree [duct.NetworkBuilder].
type Router struct {
	maxAdditions   int
	minImprovement int
}

// Option configures a Router.
type Option func(*Router)

// WithMaxAdditions caps the number of junctions the search may accept.
// Zero disables the search and routes the plain spanning tree.
func WithMaxAdditions(n int) Option {
	return func(r *Router) { r.maxAdditions = max(n, 0) }
}

// WithMinImprovement sets the smallest length saving, in grid cells, for
// which a junction is accepted. The bound is inclusive: a saving equal to
// cells is kept. Savings are whole cells, so the default of one accepts
// every junction that shortens the tree at all. Values below one are
// raised to one.
func WithMinImprovement(cells int) Option {
	return func(r *Router) { r.minImprovement = max(cells, 1) }
}

// New returns a router with the given options applied.
func New(opts ...Option) *Router {
	r := &Router{
		maxAdditions:   DefaultMaxAdditions,
		minImprovement: DefaultMinImprovement,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements [duct.NetworkBuilder].
func (r *Router) Name() string { return Name }

// Tree is a spanning tree over terminals plus accepted junctions.
type Tree struct {
	// Points holds the distinct terminal positions first, in input order,
	// followed by the junctions in acceptance order.
	Points []grid.Point
	// Terminals is the number of leading entries of Points that are terminals.
	Terminals int
	Edges     []Edge
	Length    int
}

// Junctions returns the accepted Steiner points.
func (t Tree) Junctions() []grid.Point { return t.Points[t.Terminals:] }

// Tree runs the iterated 1-Steiner search over terminals. The Hanan grid is
// taken from the terminals alone.
func (r *Router) Tree(terminals []grid.Point) Tree {
	points := uniquePoints(terminals)
	nTerm := len(points)
	candidates := HananGrid(points)
	tried := make(map[grid.Point]bool)

	for added := 0; added < r.maxAdditions; added++ {
		base := MSTLength(points)
		best, bestGain := -1, 0
		for i, c := range candidates {
			if tried[c] {
				continue
			}
			if gain := base - MSTLength(append(slices.Clip(points), c)); gain > bestGain {
				best, bestGain = i, gain
			}
		}
		if best < 0 || bestGain < r.minImprovement {
			break
		}
		tried[candidates[best]] = true
		points = append(points, candidates[best])
		points = pruneJunctions(points, nTerm)
	}

	edges, length := MST(points)
	return Tree{Points: points, Terminals: nTerm, Edges: edges, Length: length}
}

// pruneJunctions drops junctions whose spanning-tree degree is two or less;
// removing them never lengthens the tree.
func pruneJunctions(points []grid.Point, nTerm int) []grid.Point {
	for {
		edges, _ := MST(points)
		deg := make([]int, len(points))
		for _, e := range edges {
			deg[e.U]++
			deg[e.V]++
		}
		kept := points[:nTerm:nTerm]
		for i := nTerm; i < len(points); i++ {
			if deg[i] > 2 {
				kept = append(kept, points[i])
			}
		}
		if len(kept) == len(points) {
			return points
		}
		points = kept
	}
}

// Build implements [duct.NetworkBuilder]. The inlet is the root of the
// routed tree. Runs are sized only if at least one outlet carries flow.
func (r *Router) Build(in duct.Input) (duct.Result, error) {
	if err := duct.RequireTopology(in); err != nil {
		return duct.Result{}, err
	}

	var res duct.Result
	sized := slices.ContainsFunc(in.Outlets, func(t duct.Terminal) bool { return t.Flow > 0 })
	if sized {
		if err := in.Params.Validate(); err != nil {
			return duct.Result{}, err
		}
		if w := duct.CheckBalance(in); w != nil {
			res.Warnings = append(res.Warnings, w)
		}
	}

	terms := in.Terminals()
	points := make([]grid.Point, len(terms))
	for i, t := range terms {
		points[i] = t.Pos
	}

	tree := r.Tree(points)
	segs := route(tree)
	segs = dedupe(split(segs))
	segs = orient(segs, in.Inlet.Pos, duct.FixedPoints(terms))

	if !sized {
		res.Segments = segs
		return res, nil
	}
	for _, s := range assignFlows(segs, in.Outlets) {
		if err := s.Resize(in.Params); err != nil {
			if errors.IsRecoverable(err) {
				res.Skipped++
				continue
			}
			return duct.Result{}, err
		}
		res.Segments = append(res.Segments, s)
	}
	return res, nil
}

func uniquePoints(ps []grid.Point) []grid.Point {
	seen := make(map[grid.Point]bool, len(ps))
	out := make([]grid.Point, 0, len(ps))
	for _, p := range ps {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
