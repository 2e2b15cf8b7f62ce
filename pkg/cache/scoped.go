package cache

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis instance without reading each other's entries.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// SecretKeyKey generates a prefixed key for secret key caching.
func (k *ScopedKeyer) SecretKeyKey(width, version int) string {
	return k.prefix + k.inner.SecretKeyKey(width, version)
}
