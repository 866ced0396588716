package cache

// ScopedKeyer wraps a Keyer with a prefix so that several clients can
// share one backend without colliding, e.g. the CLI and the HTTP server
// on the same Redis instance.
//
//	api := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// BuildKey generates a prefixed key for built networks.
func (k *ScopedKeyer) BuildKey(terminalsHash string, opts BuildKeyOpts) string {
	return k.prefix + k.inner.BuildKey(terminalsHash, opts)
}

// RenderKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) RenderKey(networkHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(networkHash, opts)
}
