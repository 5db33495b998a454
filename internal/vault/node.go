package vault

import "io"

// Kind represents the kind of a virtual node
type Kind int

const (
	// KindDirectory maps to a physical directory
	KindDirectory Kind = iota

	// KindLeaf maps to a physical file
	KindLeaf
)

// IsDirectory returns true for directory-kind nodes
func (k Kind) IsDirectory() bool {
	return k == KindDirectory
}

// AggregateID identifies the controlling aggregate of a node. Two nodes
// sharing the same handle belong to one logical unit and are materialized
// together; the reconciler uses equality on this handle to suppress
// duplicate traversal.
type AggregateID string

// Artifact is one physical projection of a virtual node: a platform
// relative path ('/'-separated segments) plus a content type tag.
type Artifact struct {
	// PlatformPath is the path of the artifact relative to the parent
	// node's physical directory, using '/' as segment separator
	PlatformPath string

	// ContentType classifies the artifact content (MIME type)
	ContentType string
}

// Node is the capability interface over the virtual content tree. The
// reconciler only reads through it; node instances are owned by the
// tree service and are never created, mutated or destroyed by consumers.
type Node interface {
	// AggregatePath returns the logical path of the node
	AggregatePath() string

	// Kind returns whether the node maps to a directory or a file
	Kind() Kind

	// Aggregate returns the controlling aggregate handle
	Aggregate() AggregateID

	// Artifact returns the physical projection of this node
	Artifact() Artifact

	// Related returns the set of nodes that must be materialized
	// together with this one, the node itself included
	Related() []Node

	// Children returns the child nodes (directory-kind only)
	Children() []Node

	// Parent returns the parent node, or nil for the tree root
	Parent() Node

	// Open returns the content stream of a leaf artifact.
	// Calling Open on a directory-kind node is an error.
	Open() (io.ReadCloser, error)
}
