package cache

// Keyer generates cache keys. Keys for derived data embed a hash of every
// input that affects the result, so a stale entry is never served.
type Keyer interface {
	// HTTPKey generates a key for a raw HTTP response.
	HTTPKey(namespace, key string) string
	// ProblemKey generates a key for problem markup served by server.
	ProblemKey(server, id string) string
	// ArtifactKey generates a key for a rendered bracket.
	ArtifactKey(bracketHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists the render options that change an artifact.
type ArtifactKeyOpts struct {
	View        string  `json:"view,omitempty"`
	Format      string  `json:"format"`
	Style       string  `json:"style,omitempty"`
	Seed        uint64  `json:"seed,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Strict      bool    `json:"strict,omitempty"`
	Titles      bool    `json:"titles,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) ProblemKey(server, id string) string {
	return hashKey("problem", server, id)
}

func (DefaultKeyer) ArtifactKey(bracketHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", bracketHash, opts)
}
