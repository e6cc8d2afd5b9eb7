package cache

import "time"

// Default time-to-live values per key kind. Generated source is a pure
// function of its key and only expires to bound cache growth.
const (
	TTLShader = 30 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs always yield the same key.
type Keyer interface {
	// ShaderKey returns the key for source generated from a graph with
	// content hash graphHash against a registry with hash registryHash.
	ShaderKey(graphHash, registryHash string) string

	// RenderKey returns the key for a diagram of a graph in the given format.
	RenderKey(graphHash, registryHash, format string, detailed bool) string
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ShaderKey implements [Keyer].
func (DefaultKeyer) ShaderKey(graphHash, registryHash string) string {
	return hashKey("shader", graphHash, registryHash)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(graphHash, registryHash, format string, detailed bool) string {
	return hashKey("render", graphHash, registryHash, format, detailed)
}
