// Package reconcile walks a virtual content tree and a physical directory
// tree in lock-step, materializing directories and files and propagating
// deletions back upward. Every filesystem mutation is appended to a
// domain.SyncResult in the order it happened.
package reconcile

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Volune/jackrabbit-filevault/internal/core/diff"
	"github.com/Volune/jackrabbit-filevault/internal/core/lines"
	"github.com/Volune/jackrabbit-filevault/internal/domain"
	"github.com/Volune/jackrabbit-filevault/internal/logger"
	"github.com/Volune/jackrabbit-filevault/internal/mimetype"
	"github.com/Volune/jackrabbit-filevault/internal/synclog"
	"github.com/Volune/jackrabbit-filevault/internal/vault"
)

// Reconciler materializes virtual nodes onto a physical filesystem.
// All collaborators are injected at construction; the reconciler holds no
// global state and a single instance may be reused across invocations as
// long as the caller serializes syncs targeting overlapping subtrees.
type Reconciler struct {
	fs      afero.Fs
	types   mimetype.Classifier
	differ  diff.Comparer
	audit   *synclog.Log
	log     logger.Logger
	lineSep []byte
}

// New creates a reconciler. The audit log receives one action line per
// mutation; pass synclog.Discard() to disable. A nil log disables
// diagnostic logging.
func New(fs afero.Fs, types mimetype.Classifier, audit *synclog.Log, log logger.Logger) *Reconciler {
	if audit == nil {
		audit = synclog.Discard()
	}
	if log == nil {
		log = &logger.NullLogger{}
	}
	return &Reconciler{
		fs:      fs,
		types:   types,
		differ:  diff.NewContentComparer(),
		audit:   audit,
		log:     log,
		lineSep: lines.Native(),
	}
}

// SetLineSeparator overrides the separator used when normalizing text
// artifacts. Defaults to the platform native separator.
func (r *Reconciler) SetLineSeparator(sep []byte) {
	r.lineSep = sep
}

// pass carries per-invocation state across the recursive walk
type pass struct {
	// written records every physical file path materialized in this
	// invocation; a second artifact mapping to the same path is a
	// configuration error
	written map[string]struct{}
}

// Sync materializes node (and, recursively, its subtree) beneath
// parentDir. If parentDir itself is missing the node's logical ancestor
// chain is materialized first, non-recursively, so a directory always
// exists before anything is written beneath it.
//
// Directory creation is idempotent: an already existing directory is a
// no-op and produces no result entry. File content is only rewritten when
// it differs from the rendered artifact, so re-running Sync over an
// unchanged tree records no mutations.
func (r *Reconciler) Sync(res *domain.SyncResult, parentDir string, node vault.Node, recursive bool) error {
	return r.sync(res, &pass{written: make(map[string]struct{})}, parentDir, node, recursive)
}

func (r *Reconciler) sync(res *domain.SyncResult, p *pass, parentDir string, node vault.Node, recursive bool) error {
	// Ancestor guarantee: only the direct ancestor chain is materialized,
	// not unrelated siblings
	exists, err := afero.Exists(r.fs, parentDir)
	if err != nil {
		return fmt.Errorf("checking %s: %w", parentDir, err)
	}
	if !exists {
		if parent := node.Parent(); parent != nil {
			if err := r.sync(res, p, filepath.Dir(parentDir), parent, false); err != nil {
				return err
			}
		}
	}

	// Related-set materialization: every member of the node's related set
	// is written as part of this node's pass
	related := node.Related()
	if len(related) == 0 {
		related = []vault.Node{node}
	}
	for _, rel := range related {
		target := ChildPath(parentDir, rel.Artifact().PlatformPath)
		if rel.Kind().IsDirectory() {
			r.createDirectory(res, target, rel)
		} else {
			if err := r.writeFile(res, p, target, rel); err != nil {
				return err
			}
		}
	}

	if !recursive || !node.Kind().IsDirectory() {
		return nil
	}

	// Recursion: children covered by the related-set pass (same
	// controlling aggregate as the node) are skipped. If the node's own
	// directory could not be created its contents are skipped too;
	// siblings of the node are unaffected.
	nodeDir := ChildPath(parentDir, node.Artifact().PlatformPath)
	if ok, _ := afero.DirExists(r.fs, nodeDir); !ok {
		return nil
	}
	for _, child := range node.Children() {
		if child.Aggregate() == node.Aggregate() {
			continue
		}
		if err := r.sync(res, p, nodeDir, child, true); err != nil {
			return err
		}
	}
	return nil
}

// SyncAfterDelete removes deletedFile from disk and then re-syncs the
// deleted file's logical parent non-recursively, regenerating any of the
// parent's artifacts whose content depends on its child set. The deleted
// file must exist; failure to delete is fatal.
func (r *Reconciler) SyncAfterDelete(res *domain.SyncResult, parentDir string, parent vault.Node, deletedFile string) error {
	aggregatePath := parent.AggregatePath() + "/" + filepath.Base(deletedFile)

	exists, err := afero.Exists(r.fs, deletedFile)
	if err != nil {
		return fmt.Errorf("checking %s: %w", deletedFile, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, deletedFile)
	}
	if err := r.fs.Remove(deletedFile); err != nil {
		return fmt.Errorf("deleting %s: %w", deletedFile, err)
	}

	r.audit.Printf("D file://%s", deletedFile)
	res.AddEntry(aggregatePath, deletedFile, domain.OpDelete, "")

	return r.Sync(res, filepath.Dir(parentDir), parent, false)
}

// createDirectory creates the physical directory for a directory-kind
// node. Already existing directories are a silent no-op; a creation
// failure where the path is not a directory afterwards is reported
// through the logger and processing continues with the siblings.
func (r *Reconciler) createDirectory(res *domain.SyncResult, target string, node vault.Node) {
	if info, err := r.fs.Stat(target); err == nil {
		if info.IsDir() {
			return
		}
		r.log.Error("sync cannot create directory: path exists as file", "path", target)
		return
	}

	if err := r.fs.Mkdir(target, 0755); err != nil {
		// A concurrent creation racing us counts as success
		if ok, _ := afero.DirExists(r.fs, target); ok {
			return
		}
		r.log.Error("sync cannot create directory", "path", target, "error", err)
		return
	}

	r.audit.Printf("A file://%s/", target)
	res.AddEntry(node.AggregatePath(), target, domain.OpMaterialize, domain.ChangeAdded)
}

// writeFile materializes a leaf artifact. Text content (per the type
// classifier) has its line endings normalized; binary content is copied
// byte for byte. The file is only written when its content differs.
func (r *Reconciler) writeFile(res *domain.SyncResult, p *pass, target string, node vault.Node) error {
	if _, dup := p.written[target]; dup {
		return fmt.Errorf("%w: %s produced by %s", domain.ErrPathCollision, target, node.AggregatePath())
	}

	rendered, err := r.render(node)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", node.AggregatePath(), err)
	}

	result, err := r.differ.Compare(r.fs, target, rendered)
	if err != nil {
		return err
	}
	if result == diff.FileUnchanged {
		p.written[target] = struct{}{}
		return nil
	}

	change := domain.ChangeUpdated
	action := "U"
	if result == diff.FileAbsent {
		change = domain.ChangeAdded
		action = "A"
	}

	if err := afero.WriteFile(r.fs, target, rendered, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	r.audit.Printf("%s file://%s", action, target)
	res.AddEntry(node.AggregatePath(), target, domain.OpMaterialize, change)
	p.written[target] = struct{}{}
	return nil
}

// render produces the exact bytes the physical file should contain
func (r *Reconciler) render(node vault.Node) ([]byte, error) {
	rc, err := node.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	if r.types.IsBinary(node.Artifact().ContentType) {
		return data, nil
	}
	return lines.Normalize(data, r.lineSep), nil
}
