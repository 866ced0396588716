package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ductwork/pkg/buildinfo"
	"github.com/matzehuels/ductwork/pkg/drawing"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/relocate"
	"github.com/matzehuels/ductwork/pkg/duct/sizing"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
	"github.com/matzehuels/ductwork/pkg/load"
	"github.com/matzehuels/ductwork/pkg/observability"
	"github.com/matzehuels/ductwork/pkg/pipeline"
	"github.com/matzehuels/ductwork/pkg/render/plan"
	"github.com/matzehuels/ductwork/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// =============================================================================
// Sizing
// =============================================================================

type sizeRequest struct {
	Flow   float64      `json:"flow"`
	Params *duct.Params `json:"params,omitempty"`
}

type sizeResponse struct {
	Flow            float64 `json:"flow"`
	PressureDrop    float64 `json:"pressure_drop"`
	Diameter        float64 `json:"diameter_mm"`
	RoundedDiameter float64 `json:"rounded_diameter_mm"`
	Width           float64 `json:"width_mm"`
	Height          float64 `json:"height_mm"`
	RectDiameter    float64 `json:"rect_equivalent_mm"`
	Label           string  `json:"label"`
}

func (s *Server) handleSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p := s.params()
	if req.Params != nil {
		p = *req.Params
	}
	if err := p.Validate(); err != nil {
		writeError(w, err)
		return
	}
	res, err := sizing.Size(req.Flow, p.PressureDrop, p.AspectRatio, p.Step)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sizeResponse{
		Flow:            res.Flow,
		PressureDrop:    res.DropRate,
		Diameter:        res.Diameter,
		RoundedDiameter: res.RoundedDiameter,
		Width:           res.Rect.Big,
		Height:          res.Rect.Small,
		RectDiameter:    res.Rect.De,
		Label:           res.Label(),
	})
}

type supplyRequest struct {
	Temperatures load.Temperatures `json:"temperatures"`
	Rooms        []load.Room       `json:"rooms"`
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	var req supplyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	sched, err := load.Compute(req.Rooms, req.Temperatures)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// =============================================================================
// Build & render
// =============================================================================

type buildRequest struct {
	Inlet   duct.Terminal    `json:"inlet"`
	Outlets []duct.Terminal  `json:"outlets"`
	Options pipeline.Options `json:"options"`
}

type warning struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type cacheStatus struct {
	Build  bool `json:"build"`
	Render bool `json:"render"`
}

type buildResponse struct {
	Strategy    string            `json:"strategy"`
	Segments    []duct.Segment    `json:"segments"`
	Skipped     int               `json:"skipped"`
	Warnings    []warning         `json:"warnings,omitempty"`
	Material    duct.Material     `json:"material"`
	NetworkHash string            `json:"network_hash,omitempty"`
	Artifacts   map[string][]byte `json:"artifacts,omitempty"` // base64 in JSON
	Cached      cacheStatus       `json:"cached"`
}

func newBuildResponse(strategy string, res duct.Result, cellSize float64) buildResponse {
	out := buildResponse{
		Strategy: strategy,
		Segments: res.Segments,
		Skipped:  res.Skipped,
		Material: duct.EstimateMaterial(res.Segments, cellSize),
	}
	if out.Segments == nil {
		out.Segments = []duct.Segment{}
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, warning{Code: errors.GetCode(w), Message: errors.UserMessage(w)})
	}
	return out
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in := duct.Input{Inlet: req.Inlet, Outlets: req.Outlets}
	in.Inlet.Kind = duct.KindInlet
	for i := range in.Outlets {
		in.Outlets[i].Kind = duct.KindOutlet
	}
	opts := s.withDefaults(req.Options)
	if err := opts.ValidateForBuild(); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), in, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	out := newBuildResponse(opts.Strategy, res.Build, opts.CellSize)
	out.NetworkHash = res.NetworkHash
	out.Artifacts = res.Artifacts
	out.Cached = cacheStatus{Build: res.CacheInfo.BuildHit, Render: res.CacheInfo.RenderHit}
	writeJSON(w, http.StatusOK, out)
}

type renderRequest struct {
	CellSize  float64          `json:"cell_size_m"`
	Terminals []duct.Terminal  `json:"terminals"`
	Segments  []duct.Segment   `json:"segments"`
	Options   pipeline.Options `json:"options"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := duct.CheckAxisAligned(req.Segments); err != nil {
		writeError(w, err)
		return
	}
	p := plan.Plan{CellSize: req.CellSize, Terminals: req.Terminals, Segments: req.Segments}
	if p.CellSize <= 0 {
		p.CellSize = grid.DefaultCellSize
	}
	opts := req.Options
	opts.CellSize = p.CellSize
	s.renderArtifact(w, r, p, opts)
}

// renderArtifact renders one format, taken from the "format" query
// parameter, and writes it as the response body.
func (s *Server) renderArtifact(w http.ResponseWriter, r *http.Request, p plan.Plan, opts pipeline.Options) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	artifacts, cached, err := s.runner.RenderWithCacheInfo(r.Context(), p, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// =============================================================================
// Drawings
// =============================================================================

func (s *Server) handleListDrawings(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"drawings": items})
}

// drawingFromPath loads the drawing named by the {id} route parameter.
func (s *Server) drawingFromPath(r *http.Request) (*drawing.Drawing, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDrawingID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) handleGetDrawing(w http.ResponseWriter, r *http.Request) {
	d, err := s.drawingFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePutDrawing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDrawingID(id); err != nil {
		writeError(w, err)
		return
	}
	var d drawing.Drawing
	if err := decode(w, r, &d); err != nil {
		writeError(w, err)
		return
	}
	if d.ID == "" {
		d.ID = id
	}
	if d.ID != id {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "body id %q does not match path id %q", d.ID, id))
		return
	}
	if d.Version == 0 {
		d.Version = drawing.Version
	}
	if err := d.Validate(); err != nil {
		writeError(w, err)
		return
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if err := s.store.Put(r.Context(), &d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &d)
}

func (s *Server) handleDeleteDrawing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDrawingID(id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type drawingBuildRequest struct {
	Options pipeline.Options `json:"options"`
}

// handleBuildDrawing rebuilds a stored drawing and saves the result.
func (s *Server) handleBuildDrawing(w http.ResponseWriter, r *http.Request) {
	d, err := s.drawingFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req drawingBuildRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	net, err := d.Network()
	if err != nil {
		writeError(w, err)
		return
	}

	opts := req.Options
	if opts.Strategy == "" {
		opts.Strategy = d.Strategy
	}
	if opts.Params == (duct.Params{}) {
		opts.Params = d.Params
	}
	opts.CellSize = d.CellSize
	opts = s.withDefaults(opts)
	if err := opts.ValidateForBuild(); err != nil {
		writeError(w, err)
		return
	}

	res, hit, err := s.runner.BuildWithCacheInfo(r.Context(), net.Input(opts.Params), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	net.Replace(res.Segments)
	d.Capture(net, opts.Params, opts.Strategy)
	if err := s.store.Put(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}

	out := newBuildResponse(opts.Strategy, res, d.CellSize)
	out.Cached.Build = hit
	writeJSON(w, http.StatusOK, out)
}

type moveRequest struct {
	Index int `json:"index"`
	// Delta is the offset across the run's axis in grid cells; DeltaMeters
	// is used instead when non-zero.
	Delta       int     `json:"delta,omitempty"`
	DeltaMeters float64 `json:"delta_m,omitempty"`
}

type moveResponse struct {
	Report   relocate.Report `json:"report"`
	Segments []duct.Segment  `json:"segments"`
	Material duct.Material   `json:"material"`
}

// handleMoveDrawing drags one run of a stored drawing and saves the result.
func (s *Server) handleMoveDrawing(w http.ResponseWriter, r *http.Request) {
	d, err := s.drawingFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req moveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	net, err := d.Network()
	if err != nil {
		writeError(w, err)
		return
	}

	meters := req.DeltaMeters
	if meters == 0 {
		meters = float64(req.Delta) * net.CellSize()
	}
	rep, err := relocate.Shift(net, req.Index, meters)
	observability.Pipeline().OnRelocate(r.Context(), rep.Moved, rep.Split, rep.Collapsed, err)
	if err != nil {
		writeError(w, err)
		return
	}
	d.Capture(net, d.Params, d.Strategy)
	if err := s.store.Put(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{Report: rep, Segments: net.Segments(), Material: net.Material()})
}

// handleRenderDrawing renders a stored drawing. Query parameters: format,
// scale, labels, grid, title.
func (s *Server) handleRenderDrawing(w http.ResponseWriter, r *http.Request) {
	d, err := s.drawingFromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	net, err := d.Network()
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{CellSize: d.CellSize, Title: q.Get("title")}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "scale %q must be a positive number", v))
			return
		}
		opts.Scale = scale
	}
	opts.Labels, _ = strconv.ParseBool(q.Get("labels"))
	opts.Grid, _ = strconv.ParseBool(q.Get("grid"))
	s.renderArtifact(w, r, plan.FromNetwork(net), opts)
}

// =============================================================================
// Defaults
// =============================================================================

func (s *Server) params() duct.Params {
	if s.defaults.Params != (duct.Params{}) {
		return s.defaults.Params
	}
	return duct.DefaultParams()
}

// withDefaults fills unset build options from the server defaults.
func (s *Server) withDefaults(opts pipeline.Options) pipeline.Options {
	if opts.Strategy == "" {
		opts.Strategy = s.defaults.Strategy
	}
	if opts.Params == (duct.Params{}) {
		opts.Params = s.params()
	}
	if opts.CellSize == 0 {
		opts.CellSize = s.defaults.CellSize
	}
	if opts.GroupTolerance == nil {
		opts.GroupTolerance = s.defaults.GroupTolerance
	}
	if opts.MaxAdditions == nil {
		opts.MaxAdditions = s.defaults.MaxAdditions
	}
	if opts.MinImprovement == 0 {
		opts.MinImprovement = s.defaults.MinImprovement
	}
	return opts
}
