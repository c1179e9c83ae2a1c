package cache

// SnapshotKeyOpts are the inputs that affect a cached snapshot.
type SnapshotKeyOpts struct {
	SessionID string `json:"session_id,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
}

// LayoutKeyOpts are the inputs that affect a computed layout.
type LayoutKeyOpts struct {
	Seed  int64 `json:"seed"`
	Ticks int   `json:"ticks,omitempty"`
}

// ArtifactKeyOpts are the inputs that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Theme  string `json:"theme,omitempty"`
}

// Keyer generates cache keys for the pipeline stages. Implementations
// must be deterministic: the same inputs always produce the same key.
type Keyer interface {
	// SnapshotKey keys a graph snapshot by the question that produced it.
	SnapshotKey(question string, opts SnapshotKeyOpts) string

	// LayoutKey keys a layout by the hash of the disclosed graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes each stage's inputs into a prefixed SHA-256 key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for snapshot caching.
func (k *DefaultKeyer) SnapshotKey(question string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", question, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
