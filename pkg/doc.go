// Package pkg provides the core libraries for ductwork, a planner for
// rectangular HVAC supply duct networks.
//
// # Overview
//
// A drawing is a set of air terminals placed on a square grid: one inlet
// (the air handling unit) and any number of outlets (diffusers), each with
// an airflow in m³/h. Ductwork routes axis-aligned duct runs from the inlet
// to every outlet, sizes each run by the friction method and lets the user
// drag runs sideways afterwards without breaking connectivity.
//
// The pkg directory is organized into four areas:
//
//  1. Domain logic: [grid], [duct] and its builders, [load]
//  2. Orchestration: [pipeline] (build → render, with caching)
//  3. Output: [render/plan], [render/topology], [render]
//  4. Infrastructure: [cache], [store], [drawing], [config], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Drawing file / store / API request
//	         ↓
//	    [duct] package (terminals + network model)
//	         ↓
//	    [duct/spine] or [duct/steiner] (route + size)
//	         ↓
//	    [duct/relocate] (optional manual edits)
//	         ↓
//	    [render/plan] (SVG/PNG/PDF/JSON) or [render/topology] (DOT/SVG)
//
// # Quick Start
//
// Route and size a two-terminal riser:
//
//	net := duct.New(grid.DefaultCellSize)
//	net.SetInlet(grid.Pt(0, 0), 500)
//	_ = net.AddOutlet(grid.Pt(4, 3), 500)
//
//	res, err := net.Rebuild(spine.New(), duct.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	for _, s := range res.Segments {
//	    fmt.Println(s.A, s.B, s.Label)
//	}
//
// Shift the vertical run one meter to the right:
//
//	rep, err := relocate.Shift(net, 1, 1.0)
//
// Size a single duct:
//
//	r, err := sizing.Size(1200, 0.1, 2, 50)
//
// # Main Packages
//
// [grid] - Integer grid points, orientation and cell-to-meter conversion.
//
// [duct] - Terminals, segments, the mutable [duct.Network] and the
// [duct.NetworkBuilder] interface shared by all routing strategies.
//
// [duct/sizing] - Friction-method sizing of round and rectangular ducts.
//
// [duct/spine] - Trunk-and-branch routing along the dominant axis.
//
// [duct/steiner] - Rectilinear Steiner tree routing with iterative
// junction insertion.
//
// [duct/relocate] - Perpendicular drag of a run with connectivity repair.
//
// [load] - Room cooling loads to supply airflow and diffuser counts.
//
// [pipeline] - Build and render stages used by the CLI and the HTTP server,
// backed by [cache].
//
// [cache] - Content-addressed cache with file, Redis and null backends.
//
// [store] - Drawing persistence on disk or in MongoDB.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                # All tests
//	go test ./pkg/duct/...           # Specific package
//	go test -run Example ./pkg/...   # Examples only
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/grid
// [duct]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/duct
// [duct/sizing]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/duct/sizing
// [duct/spine]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/duct/spine
// [duct/steiner]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/duct/steiner
// [duct/relocate]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/duct/relocate
// [load]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/load
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/render
// [render/plan]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/render/plan
// [render/topology]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/render/topology
// [cache]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/store
// [drawing]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/drawing
// [config]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/ductwork/pkg/observability
package pkg
