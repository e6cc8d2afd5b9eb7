package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// environments can share one redis instance without colliding.
//
// Example usage:
//
//	// Keys for the staging service
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ShaderKey generates a prefixed key for generated shader source.
func (k *ScopedKeyer) ShaderKey(graphHash, registryHash string) string {
	return k.prefix + k.inner.ShaderKey(graphHash, registryHash)
}

// RenderKey generates a prefixed key for a rendered diagram.
func (k *ScopedKeyer) RenderKey(graphHash, registryHash, format string, detailed bool) string {
	return k.prefix + k.inner.RenderKey(graphHash, registryHash, format, detailed)
}
