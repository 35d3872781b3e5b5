package cache

// ScopedKeyer wraps a Keyer with a prefix so that several backends (or
// several tournament servers) can share one store without collisions.
//
//	arenaKeyer := NewScopedKeyer(NewDefaultKeyer(), "arena.example.org:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) ProblemKey(server, id string) string {
	return k.prefix + k.inner.ProblemKey(server, id)
}

func (k *ScopedKeyer) ArtifactKey(bracketHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(bracketHash, opts)
}
