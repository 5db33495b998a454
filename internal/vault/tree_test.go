package vault

import (
	"io"
	"testing"
)

func TestNewDirectory(t *testing.T) {
	root := NewDirectory("/content/site")

	if root.AggregatePath() != "/content/site" {
		t.Errorf("unexpected aggregate path: %s", root.AggregatePath())
	}
	if !root.Kind().IsDirectory() {
		t.Error("root should be directory-kind")
	}
	if root.Artifact().PlatformPath != "site" {
		t.Errorf("unexpected artifact path: %s", root.Artifact().PlatformPath)
	}
	if root.Parent() != nil {
		t.Error("root should have no parent")
	}
	if len(root.Related()) != 1 || root.Related()[0] != Node(root) {
		t.Error("related set of a plain node should be the node itself")
	}
}

func TestAddLeaf(t *testing.T) {
	root := NewDirectory("/content/site")
	leaf := root.AddLeaf("index.html", "text/html", []byte("<html/>"))

	if leaf.AggregatePath() != "/content/site/index.html" {
		t.Errorf("unexpected aggregate path: %s", leaf.AggregatePath())
	}
	if leaf.Aggregate() == root.Aggregate() {
		t.Error("a plain leaf must carry its own aggregate")
	}
	if leaf.Parent() != Node(root) {
		t.Error("leaf parent should be the root")
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children()))
	}

	rc, err := leaf.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "<html/>" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestAddArtifact_SharesAggregate(t *testing.T) {
	root := NewDirectory("/content/site")
	meta := root.AddArtifact(".dir", "text/plain", []byte("listing"))

	if meta.Aggregate() != root.Aggregate() {
		t.Error("auxiliary artifact must share the node's aggregate")
	}
	// Related members resolve against the owning node's parent directory,
	// so the platform path must carry the node's own directory as prefix.
	if meta.Artifact().PlatformPath != "site/.dir" {
		t.Errorf("artifact platform path = %q, want %q",
			meta.Artifact().PlatformPath, "site/.dir")
	}
	if meta.AggregatePath() != "/content/site/.dir" {
		t.Errorf("artifact aggregate path = %q", meta.AggregatePath())
	}
	if len(root.Related()) != 2 {
		t.Fatalf("expected related set of 2, got %d", len(root.Related()))
	}
	if root.Related()[0] != Node(root) {
		t.Error("node itself must come first in the related set")
	}

	// The artifact also shows up as a child so the skip rule applies
	found := false
	for _, c := range root.Children() {
		if c == Node(meta) {
			found = true
		}
	}
	if !found {
		t.Error("auxiliary artifact should be listed as a child")
	}
}

func TestAddArtifact_NestedDirectory(t *testing.T) {
	root := NewDirectory("/content/site")
	images := root.AddDirectory("images")
	meta := images.AddArtifact(".dir", "text/plain", []byte("listing"))

	if meta.Artifact().PlatformPath != "images/.dir" {
		t.Errorf("artifact platform path = %q, want %q",
			meta.Artifact().PlatformPath, "images/.dir")
	}
	if meta.Aggregate() != images.Aggregate() {
		t.Error("artifact must share the subdirectory's aggregate")
	}
}

func TestOpen_Directory(t *testing.T) {
	root := NewDirectory("/content/site")
	if _, err := root.Open(); err == nil {
		t.Error("Open on a directory should fail")
	}
}

func TestSetContent(t *testing.T) {
	root := NewDirectory("/content/site")
	leaf := root.AddLeaf("a.txt", "text/plain", []byte("old"))

	leaf.SetContent([]byte("new"))

	rc, err := leaf.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "new" {
		t.Errorf("expected new content, got %q", data)
	}
}
