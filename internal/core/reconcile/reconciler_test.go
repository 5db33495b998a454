package reconcile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/Volune/jackrabbit-filevault/internal/core/lines"
	"github.com/Volune/jackrabbit-filevault/internal/domain"
	"github.com/Volune/jackrabbit-filevault/internal/mimetype"
	"github.com/Volune/jackrabbit-filevault/internal/synclog"
	"github.com/Volune/jackrabbit-filevault/internal/vault"
)

// newTestReconciler builds a reconciler over a fresh in-memory filesystem
// with a fixed LF separator so tests behave the same on every platform
func newTestReconciler(t *testing.T) (*Reconciler, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/target", 0755); err != nil {
		t.Fatalf("failed to create target dir: %v", err)
	}

	r := New(fs, mimetype.NewTable(), synclog.Discard(), nil)
	r.SetLineSeparator(lines.LF)
	return r, fs
}

// newSiteTree builds the reference tree: /content/site with a related
// index.html artifact and an images directory carrying a .dir listing
// artifact plus a binary logo
func newSiteTree() (*vault.TreeNode, *vault.TreeNode) {
	root := vault.NewDirectory("/content/site")
	root.AddArtifact("index.html", "text/html", []byte("<html>home</html>\n"))
	images := root.AddDirectory("images")
	images.AddArtifact(".dir", "text/plain", []byte("logo.png\n"))
	images.AddLeaf("logo.png", "image/png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	return root, images
}

func entryPaths(res *domain.SyncResult) []string {
	var paths []string
	for _, e := range res.Entries() {
		paths = append(paths, e.FsPath)
	}
	return paths
}

func TestSync_EndToEnd(t *testing.T) {
	r, fs := newTestReconciler(t)
	root, _ := newSiteTree()

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	want := []string{
		"/target/site",
		"/target/site/index.html",
		"/target/site/images",
		"/target/site/images/.dir",
		"/target/site/images/logo.png",
	}
	got := entryPaths(res)
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	for _, e := range res.Entries() {
		if e.Op != domain.OpMaterialize {
			t.Errorf("expected materialize op for %s, got %s", e.FsPath, e.Op)
		}
		if e.Change != domain.ChangeAdded {
			t.Errorf("expected added change for %s, got %s", e.FsPath, e.Change)
		}
	}

	content, err := afero.ReadFile(fs, "/target/site/index.html")
	if err != nil {
		t.Fatalf("index.html not materialized: %v", err)
	}
	if string(content) != "<html>home</html>\n" {
		t.Errorf("unexpected index.html content: %q", content)
	}
}

func TestSync_NoDoubleProcessing(t *testing.T) {
	r, _ := newTestReconciler(t)
	root, _ := newSiteTree()

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	// .dir shares the images aggregate and must only appear once, via
	// the related-set pass, never again as a child
	seen := make(map[string]int)
	for _, p := range entryPaths(res) {
		seen[p]++
	}
	for p, n := range seen {
		if n != 1 {
			t.Errorf("path %s materialized %d times", p, n)
		}
	}
	if seen["/target/site/images/.dir"] != 1 {
		t.Errorf("expected exactly one .dir entry, got %d", seen["/target/site/images/.dir"])
	}
}

func TestSync_Idempotent(t *testing.T) {
	r, _ := newTestReconciler(t)
	root, _ := newSiteTree()

	first := domain.NewSyncResult()
	if err := r.Sync(first, "/target", root, true); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if first.Len() == 0 {
		t.Fatal("first sync recorded no mutations")
	}

	second := domain.NewSyncResult()
	if err := r.Sync(second, "/target", root, true); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if second.Len() != 0 {
		t.Errorf("second sync on unchanged tree recorded %d mutations: %v",
			second.Len(), entryPaths(second))
	}
}

func TestSync_AncestorGuarantee(t *testing.T) {
	r, _ := newTestReconciler(t)
	root, images := newSiteTree()
	_ = root

	// Sync a deep node while no ancestor directory exists yet
	var logo vault.Node
	for _, c := range images.Children() {
		if c.Kind() == vault.KindLeaf && c.Aggregate() != images.Aggregate() {
			logo = c
		}
	}
	if logo == nil {
		t.Fatal("logo node not found")
	}

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target/site/images", logo, true); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	got := entryPaths(res)
	indexOf := func(path string) int {
		for i, p := range got {
			if p == path {
				return i
			}
		}
		t.Fatalf("no entry for %s in %v", path, got)
		return -1
	}

	site := indexOf("/target/site")
	imgs := indexOf("/target/site/images")
	leaf := indexOf("/target/site/images/logo.png")
	if !(site < imgs && imgs < leaf) {
		t.Errorf("ancestors must be materialized before descendants, got order %v", got)
	}
}

func TestSync_Updated(t *testing.T) {
	r, fs := newTestReconciler(t)
	root := vault.NewDirectory("/content/docs")
	note := root.AddLeaf("note.txt", "text/plain", []byte("v1\n"))

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("initial sync failed: %v", err)
	}

	note.SetContent([]byte("v2\n"))

	res = domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("re-sync failed: %v", err)
	}

	entries := res.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %v", len(entries), entryPaths(res))
	}
	if entries[0].Change != domain.ChangeUpdated {
		t.Errorf("expected updated change, got %s", entries[0].Change)
	}

	content, _ := afero.ReadFile(fs, "/target/docs/note.txt")
	if string(content) != "v2\n" {
		t.Errorf("unexpected content after update: %q", content)
	}
}

func TestSync_BinaryFidelity(t *testing.T) {
	r, fs := newTestReconciler(t)

	// Bytes that would be rewritten if normalization leaked into binary
	raw := []byte{'a', '\r', '\n', 'b', '\r', 'c', '\n', 0x00, 0xff}
	root := vault.NewDirectory("/content/bin")
	root.AddLeaf("blob.png", "image/png", raw)

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	got, err := afero.ReadFile(fs, "/target/bin/blob.png")
	if err != nil {
		t.Fatalf("blob not materialized: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("binary content altered: expected %v, got %v", raw, got)
	}
}

func TestSync_TextNormalization(t *testing.T) {
	r, fs := newTestReconciler(t)

	root := vault.NewDirectory("/content/docs")
	root.AddLeaf("mixed.txt", "text/plain", []byte("a\r\nb\rc\n"))

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	got, err := afero.ReadFile(fs, "/target/docs/mixed.txt")
	if err != nil {
		t.Fatalf("file not materialized: %v", err)
	}
	if string(got) != "a\nb\nc\n" {
		t.Errorf("expected normalized line endings, got %q", got)
	}
}

func TestSync_PathCollision(t *testing.T) {
	r, _ := newTestReconciler(t)

	root := vault.NewDirectory("/content/docs")
	root.AddLeaf("dup.txt", "text/plain", []byte("one\n"))
	root.AddLeaf("dup.txt", "text/plain", []byte("two\n"))

	res := domain.NewSyncResult()
	err := r.Sync(res, "/target", root, true)
	if !errors.Is(err, domain.ErrPathCollision) {
		t.Fatalf("expected ErrPathCollision, got %v", err)
	}
}

func TestSync_DirBlockedByFile(t *testing.T) {
	r, fs := newTestReconciler(t)

	root := vault.NewDirectory("/content/site")
	blocked := root.AddDirectory("blocked")
	blocked.AddLeaf("inner.txt", "text/plain", []byte("hidden\n"))
	root.AddLeaf("ok.txt", "text/plain", []byte("visible\n"))

	// Occupy the directory's physical path with a plain file
	if err := fs.MkdirAll("/target/site", 0755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/target/site/blocked", []byte("in the way"), 0644); err != nil {
		t.Fatal(err)
	}

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("sync should continue past blocked directory, got %v", err)
	}

	// Sibling processing continues
	if ok, _ := afero.Exists(fs, "/target/site/ok.txt"); !ok {
		t.Error("sibling file was not materialized")
	}

	// The blocked subtree is skipped without an entry
	if ok, _ := afero.Exists(fs, "/target/site/blocked/inner.txt"); ok {
		t.Error("blocked subtree should not have been descended into")
	}
	for _, e := range res.Entries() {
		if e.FsPath == "/target/site/blocked" {
			t.Error("blocked directory should not have a result entry")
		}
	}
}

func TestSyncAfterDelete(t *testing.T) {
	r, fs := newTestReconciler(t)

	root := vault.NewDirectory("/content/docs")
	listing := root.AddArtifact(".dir", "text/plain", []byte("a.txt\nb.txt\n"))
	root.AddLeaf("a.txt", "text/plain", []byte("alpha\n"))
	root.AddLeaf("b.txt", "text/plain", []byte("beta\n"))

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("initial sync failed: %v", err)
	}

	// The tree service regenerates the listing once a is gone
	listing.SetContent([]byte("b.txt\n"))

	res = domain.NewSyncResult()
	err := r.SyncAfterDelete(res, "/target/docs", root, "/target/docs/a.txt")
	if err != nil {
		t.Fatalf("syncAfterDelete failed: %v", err)
	}

	entries := res.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), entryPaths(res))
	}

	if entries[0].Op != domain.OpDelete {
		t.Errorf("first entry should be a delete, got %s", entries[0].Op)
	}
	if entries[0].AggregatePath != "/content/docs/a.txt" {
		t.Errorf("unexpected delete aggregate path: %s", entries[0].AggregatePath)
	}

	if entries[1].Op != domain.OpMaterialize || entries[1].FsPath != "/target/docs/.dir" {
		t.Errorf("second entry should re-materialize the listing, got %+v", entries[1])
	}
	if entries[1].Change != domain.ChangeUpdated {
		t.Errorf("listing should be an update, got %s", entries[1].Change)
	}

	if ok, _ := afero.Exists(fs, "/target/docs/a.txt"); ok {
		t.Error("a.txt should be deleted")
	}

	// b must not be re-materialized
	for _, e := range entries {
		if e.FsPath == "/target/docs/b.txt" {
			t.Error("b.txt should not be touched by delete-resync")
		}
	}
}

func TestSyncAfterDelete_MissingFile(t *testing.T) {
	r, _ := newTestReconciler(t)
	root := vault.NewDirectory("/content/docs")

	res := domain.NewSyncResult()
	err := r.SyncAfterDelete(res, "/target/docs", root, "/target/docs/ghost.txt")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if res.Len() != 0 {
		t.Errorf("failed delete must not record entries, got %d", res.Len())
	}
}

func TestSync_AuditLogLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/target", 0755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	r := New(fs, mimetype.NewTable(), synclog.New(&buf), nil)
	r.SetLineSeparator(lines.LF)

	root := vault.NewDirectory("/content/docs")
	root.AddLeaf("note.txt", "text/plain", []byte("hi\n"))

	res := domain.NewSyncResult()
	if err := r.Sync(res, "/target", root, true); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("A file:///target/docs/")) {
		t.Errorf("expected directory add line in audit log, got %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("A file:///target/docs/note.txt")) {
		t.Errorf("expected file add line in audit log, got %q", out)
	}
}
