package cache

// Keyer generates cache keys for the pipeline stages.
//
// Separating key generation from storage lets different deployments share
// a backend while keeping their key schemas consistent, and lets
// [ScopedKeyer] add tenant prefixes without touching the stages.
type Keyer interface {
	// SnapshotKey generates a key for a parsed module tree. The version
	// token (latest source modification time) invalidates the entry when
	// any source file changes.
	SnapshotKey(rootFile string, version int64) string

	// LayoutKey generates a key for computed geometry. snapshotHash is
	// the hash of the serialized snapshot the geometry was computed from.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact. layoutHash is
	// the hash of the serialized geometry the artifact was rendered from.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts captures the layout inputs beyond the snapshot itself.
type LayoutKeyOpts struct {
	ConfigHash string // hash of the effective layout configuration
}

// ArtifactKeyOpts captures the render inputs beyond the geometry itself.
type ArtifactKeyOpts struct {
	Format       string // output format (svg, json, dot)
	ExpandedHash string // hash of the sorted expanded module set
}

// DefaultKeyer is the standard key schema.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for a parsed module tree.
func (k *DefaultKeyer) SnapshotKey(rootFile string, version int64) string {
	return hashKey("snapshot", rootFile, version)
}

// LayoutKey generates a key for computed geometry.
func (k *DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts.ConfigHash)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts.Format, opts.ExpandedHash)
}
