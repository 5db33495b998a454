package vault

import (
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

// TreeNode is the in-memory Node implementation used by the snapshot
// loader and by tests. Nodes are wired through the builder methods and
// should not be modified once a sync is running against the tree.
type TreeNode struct {
	aggregatePath string
	kind          Kind
	aggregate     AggregateID
	artifact      Artifact
	parent        *TreeNode
	related       []*TreeNode
	children      []*TreeNode
	content       []byte
}

var _ Node = (*TreeNode)(nil)

// NewDirectory creates a detached directory node with the given logical
// path. The node's own artifact is the last path segment; its aggregate
// handle defaults to the logical path.
func NewDirectory(aggregatePath string) *TreeNode {
	n := &TreeNode{
		aggregatePath: aggregatePath,
		kind:          KindDirectory,
		aggregate:     AggregateID(aggregatePath),
		artifact:      Artifact{PlatformPath: path.Base(aggregatePath)},
	}
	n.related = []*TreeNode{n}
	return n
}

// AddDirectory appends a child directory node
func (n *TreeNode) AddDirectory(name string) *TreeNode {
	child := &TreeNode{
		aggregatePath: n.aggregatePath + "/" + name,
		kind:          KindDirectory,
		artifact:      Artifact{PlatformPath: name},
		parent:        n,
	}
	child.aggregate = AggregateID(child.aggregatePath)
	child.related = []*TreeNode{child}
	n.children = append(n.children, child)
	return child
}

// AddLeaf appends a child leaf node carrying its own aggregate
func (n *TreeNode) AddLeaf(name, contentType string, content []byte) *TreeNode {
	child := &TreeNode{
		aggregatePath: n.aggregatePath + "/" + name,
		kind:          KindLeaf,
		artifact:      Artifact{PlatformPath: name, ContentType: contentType},
		parent:        n,
		content:       content,
	}
	child.aggregate = AggregateID(child.aggregatePath)
	child.related = []*TreeNode{child}
	n.children = append(n.children, child)
	return child
}

// AddArtifact attaches an auxiliary leaf artifact to this node. The new
// node shares this node's controlling aggregate and joins its related
// set, so it is materialized in the same pass as the node itself and is
// skipped during child recursion. It is also listed as a child, matching
// how listing/metadata artifacts appear in the tree.
//
// Related members are resolved against the directory the owning node
// sits in, so the stored platform path is prefixed with the node's own
// platform path to land the artifact inside the node's directory.
func (n *TreeNode) AddArtifact(name, contentType string, content []byte) *TreeNode {
	art := &TreeNode{
		aggregatePath: n.aggregatePath + "/" + path.Base(name),
		kind:          KindLeaf,
		artifact: Artifact{
			PlatformPath: n.artifact.PlatformPath + "/" + name,
			ContentType:  contentType,
		},
		parent:    n,
		aggregate: n.aggregate,
		content:   content,
	}
	art.related = []*TreeNode{art}
	n.related = append(n.related, art)
	n.children = append(n.children, art)
	return art
}

// SetContent replaces the content of a leaf node. Used by tests and by
// snapshot reloads; not safe during a running sync.
func (n *TreeNode) SetContent(content []byte) {
	n.content = content
}

// AggregatePath returns the logical path of the node
func (n *TreeNode) AggregatePath() string { return n.aggregatePath }

// Kind returns the node kind
func (n *TreeNode) Kind() Kind { return n.kind }

// Aggregate returns the controlling aggregate handle
func (n *TreeNode) Aggregate() AggregateID { return n.aggregate }

// Artifact returns the node's physical projection
func (n *TreeNode) Artifact() Artifact { return n.artifact }

// Related returns the related set, the node itself first
func (n *TreeNode) Related() []Node {
	out := make([]Node, len(n.related))
	for i, r := range n.related {
		out[i] = r
	}
	return out
}

// Children returns the child nodes
func (n *TreeNode) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Parent returns the parent node or nil for the root
func (n *TreeNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Open returns the content stream of a leaf node
func (n *TreeNode) Open() (io.ReadCloser, error) {
	if n.kind != KindLeaf {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFile, n.aggregatePath)
	}
	return io.NopCloser(bytes.NewReader(n.content)), nil
}
