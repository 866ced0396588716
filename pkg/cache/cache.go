// Package cache stores build and render results keyed by their inputs.
//
// Builders are pure functions of the terminal set and parameters, so a
// network built once can be reused for identical input. The [Cache]
// interface is implemented by:
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// Keys come from a [Keyer], which hashes every input that affects the
// result:
//
//	k := cache.NewDefaultKeyer()
//	key := k.BuildKey(cache.Hash(terminalsJSON), cache.BuildKeyOpts{Strategy: "spine", ...})
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long build and render results are kept.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// BuildKeyOpts lists every setting that changes a built network.
type BuildKeyOpts struct {
	Strategy       string  `json:"strategy"`
	PressureDrop   float64 `json:"pressure_drop"`
	AspectRatio    float64 `json:"aspect_ratio"`
	Step           float64 `json:"step"`
	GroupTolerance int     `json:"group_tolerance,omitempty"`
	MaxAdditions   int     `json:"max_additions,omitempty"`
	MinImprovement int     `json:"min_improvement,omitempty"`
}

// RenderKeyOpts lists every setting that changes a rendered artifact.
type RenderKeyOpts struct {
	Format   string  `json:"format"`
	CellSize float64 `json:"cell_size"`
	Scale    float64 `json:"scale"`
	Labels   bool    `json:"labels"`
	Grid     bool    `json:"grid"`
	Title    string  `json:"title,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// BuildKey keys a built network by the hash of its terminals.
	BuildKey(terminalsHash string, opts BuildKeyOpts) string

	// RenderKey keys a rendered artifact by the hash of its network.
	RenderKey(networkHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BuildKey implements [Keyer].
func (DefaultKeyer) BuildKey(terminalsHash string, opts BuildKeyOpts) string {
	return hashKey("build", terminalsHash, opts)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(networkHash string, opts RenderKeyOpts) string {
	return hashKey("render", networkHash, opts)
}
