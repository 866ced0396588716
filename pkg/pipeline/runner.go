package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/observability"
	"github.com/matzehuels/ductwork/pkg/render/plan"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-run state. Multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means cache.DefaultKeyer, a nil
// cache disables caching and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute builds a network for in and renders it. opts.Params replaces
// in.Params.
func (r *Runner) Execute(ctx context.Context, in duct.Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	in.Params = opts.Params

	result := &Result{Input: in}

	buildStart := time.Now()
	built, hit, err := r.BuildWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Build = built
	result.CacheInfo.BuildHit = hit
	result.Stats = Stats{
		Outlets:   len(in.Outlets),
		Segments:  len(built.Segments),
		Skipped:   built.Skipped,
		Warnings:  len(built.Warnings),
		Material:  duct.EstimateMaterial(built.Segments, opts.CellSize),
		BuildTime: time.Since(buildStart),
	}

	r.Logger.Info("built network",
		"strategy", opts.Strategy,
		"segments", result.Stats.Segments,
		"skipped", result.Stats.Skipped,
		"duration", result.Stats.BuildTime)

	p := plan.Plan{CellSize: opts.CellSize, Terminals: in.Terminals(), Segments: built.Segments}
	result.NetworkHash = hashPlan(p)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds a network for in and reports whether the
// result came from the cache. opts.Params replaces in.Params.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, in duct.Input, opts Options) (duct.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return duct.Result{}, false, err
	}
	in.Params = opts.Params

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Strategy, len(in.Outlets)+1)
	start := time.Now()

	key := r.Keyer.BuildKey(hashTerminals(in), opts.BuildKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			opts.Logger.Debug("cache read failed", "err", err)
		} else if hit {
			if res, err := decodeBuild(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "build")
				hooks.OnBuildComplete(ctx, opts.Strategy, buildStats(res, true, time.Since(start)), nil)
				return res, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "build")
	}

	b, err := opts.NewBuilder()
	if err != nil {
		return duct.Result{}, false, err
	}
	res, err := b.Build(in)
	if err != nil {
		hooks.OnBuildComplete(ctx, opts.Strategy, observability.BuildStats{Duration: time.Since(start)}, err)
		return duct.Result{}, false, err
	}

	if data, err := encodeBuild(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			opts.Logger.Debug("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "build", len(data))
		}
	}

	hooks.OnBuildComplete(ctx, opts.Strategy, buildStats(res, false, time.Since(start)), nil)
	return res, false, nil
}

// Build is BuildWithCacheInfo without the cache hit flag.
func (r *Runner) Build(ctx context.Context, in duct.Input, opts Options) (duct.Result, error) {
	res, _, err := r.BuildWithCacheInfo(ctx, in, opts)
	return res, err
}

// Builder adapts the runner to [duct.NetworkBuilder] so that a live
// network can be rebuilt through the cache:
//
//	net.Rebuild(runner.Builder(ctx, opts), params)
//
// The params passed to Rebuild win over opts.Params.
func (r *Runner) Builder(ctx context.Context, opts Options) duct.NetworkBuilder {
	return &cachedBuilder{ctx: ctx, runner: r, opts: opts}
}

type cachedBuilder struct {
	ctx    context.Context
	runner *Runner
	opts   Options
}

func (b *cachedBuilder) Name() string {
	if b.opts.Strategy == "" {
		return DefaultStrategy
	}
	return b.opts.Strategy
}

func (b *cachedBuilder) Build(in duct.Input) (duct.Result, error) {
	opts := b.opts
	if in.Params != (duct.Params{}) {
		opts.Params = in.Params
	}
	return b.runner.Build(b.ctx, in, opts)
}

// RenderWithCacheInfo renders p and reports whether every artifact came
// from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p plan.Plan, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	netHash := hashPlan(p)
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(netHash, opts.RenderKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			allCached = false
			break
		}
		artifacts[format] = data
	}
	if allCached {
		observability.Cache().OnCacheHit(ctx, "render")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := Render(p, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.RenderKey(netHash, opts.RenderKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			opts.Logger.Debug("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func buildStats(res duct.Result, cached bool, d time.Duration) observability.BuildStats {
	return observability.BuildStats{
		Segments: len(res.Segments),
		Skipped:  res.Skipped,
		Warnings: len(res.Warnings),
		Cached:   cached,
		Duration: d,
	}
}

func hashTerminals(in duct.Input) string {
	h, _ := cache.HashJSON(in.Terminals())
	return h
}

func hashPlan(p plan.Plan) string {
	h, _ := cache.HashJSON(p)
	return h
}

// cachedBuild is the cache encoding of a duct.Result. Warnings are stored
// by code and message and rebuilt as coded errors.
type cachedBuild struct {
	Segments []duct.Segment  `json:"segments"`
	Skipped  int             `json:"skipped,omitempty"`
	Warnings []cachedWarning `json:"warnings,omitempty"`
}

type cachedWarning struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func encodeBuild(res duct.Result) ([]byte, error) {
	c := cachedBuild{Segments: res.Segments, Skipped: res.Skipped}
	for _, w := range res.Warnings {
		c.Warnings = append(c.Warnings, cachedWarning{Code: errors.GetCode(w), Message: errors.UserMessage(w)})
	}
	return json.Marshal(c)
}

func decodeBuild(data []byte) (duct.Result, error) {
	var c cachedBuild
	if err := json.Unmarshal(data, &c); err != nil {
		return duct.Result{}, err
	}
	res := duct.Result{Segments: c.Segments, Skipped: c.Skipped}
	for _, w := range c.Warnings {
		res.Warnings = append(res.Warnings, errors.New(w.Code, "%s", w.Message))
	}
	return res, nil
}
