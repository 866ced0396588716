package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, and failures at
// warn level. It implements all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnBuildStart(_ context.Context, strategy string, terminals int) {
	h.logger.Debug("build started", "strategy", strategy, "terminals", terminals)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, strategy string, s BuildStats, err error) {
	if err != nil {
		h.logger.Warn("build failed", "strategy", strategy, "err", err)
		return
	}
	h.logger.Debug("build finished", "strategy", strategy, "segments", s.Segments,
		"skipped", s.Skipped, "warnings", s.Warnings, "cached", s.Cached, "took", s.Duration)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render finished", "formats", formats, "took", d)
}

func (h *LogHooks) OnRelocate(_ context.Context, moved, split, collapsed int, err error) {
	if err != nil {
		h.logger.Warn("move rejected", "err", err)
		return
	}
	h.logger.Debug("segments moved", "moved", moved, "split", split, "collapsed", collapsed)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	lvl := log.InfoLevel
	if status >= 500 {
		lvl = log.ErrorLevel
	}
	h.logger.Log(lvl, "response", "method", method, "route", route, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
