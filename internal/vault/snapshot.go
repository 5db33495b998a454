package vault

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

// snapshotDoc is the on-disk form of a content tree snapshot
type snapshotDoc struct {
	// Path is the aggregate path of the tree root, e.g. /content/site
	Path string       `yaml:"path"`
	Root snapshotNode `yaml:"root"`
}

type snapshotNode struct {
	Name      string             `yaml:"name"`
	Kind      string             `yaml:"kind"` // "directory" or "file"; defaults by content
	Type      string             `yaml:"type"` // content type, files only
	Text      string             `yaml:"text"`
	Base64    string             `yaml:"base64"`
	Artifacts []snapshotArtifact `yaml:"artifacts"`
	Children  []snapshotNode     `yaml:"children"`
}

// snapshotArtifact is an auxiliary artifact sharing its node's aggregate
type snapshotArtifact struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Text   string `yaml:"text"`
	Base64 string `yaml:"base64"`
}

// LoadSnapshot reads a YAML content tree snapshot and builds the virtual
// tree it describes. The returned node is the tree root.
func LoadSnapshot(fs afero.Fs, path string) (*TreeNode, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return ParseSnapshot(data)
}

// ParseSnapshot builds a virtual tree from serialized snapshot bytes
func ParseSnapshot(data []byte) (*TreeNode, error) {
	var doc snapshotDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotInvalid, err)
	}
	if doc.Path == "" {
		return nil, fmt.Errorf("%w: missing root path", domain.ErrSnapshotInvalid)
	}

	root := NewDirectory(doc.Path)
	if err := populate(root, doc.Root); err != nil {
		return nil, err
	}
	return root, nil
}

// populate wires artifacts and children of one snapshot node
func populate(dir *TreeNode, sn snapshotNode) error {
	for _, a := range sn.Artifacts {
		if a.Name == "" {
			return fmt.Errorf("%w: artifact without name under %s",
				domain.ErrSnapshotInvalid, dir.AggregatePath())
		}
		content, err := decodeContent(a.Text, a.Base64)
		if err != nil {
			return fmt.Errorf("%w: artifact %s under %s: %v",
				domain.ErrSnapshotInvalid, a.Name, dir.AggregatePath(), err)
		}
		dir.AddArtifact(a.Name, a.Type, content)
	}

	for _, c := range sn.Children {
		if c.Name == "" {
			return fmt.Errorf("%w: child without name under %s",
				domain.ErrSnapshotInvalid, dir.AggregatePath())
		}
		if isDirectoryNode(c) {
			child := dir.AddDirectory(c.Name)
			if err := populate(child, c); err != nil {
				return err
			}
			continue
		}
		content, err := decodeContent(c.Text, c.Base64)
		if err != nil {
			return fmt.Errorf("%w: file %s under %s: %v",
				domain.ErrSnapshotInvalid, c.Name, dir.AggregatePath(), err)
		}
		dir.AddLeaf(c.Name, c.Type, content)
	}
	return nil
}

// isDirectoryNode decides the node kind: an explicit kind wins, otherwise
// nodes carrying children or artifacts are directories
func isDirectoryNode(sn snapshotNode) bool {
	switch sn.Kind {
	case "directory":
		return true
	case "file":
		return false
	}
	return len(sn.Children) > 0 || len(sn.Artifacts) > 0
}

func decodeContent(text, b64 string) ([]byte, error) {
	if text != "" && b64 != "" {
		return nil, fmt.Errorf("both text and base64 content given")
	}
	if b64 != "" {
		return base64.StdEncoding.DecodeString(b64)
	}
	return []byte(text), nil
}
