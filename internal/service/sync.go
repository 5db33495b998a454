// Package service orchestrates snapshot loading, locking and
// reconciliation on behalf of the CLI and the daemon.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Volune/jackrabbit-filevault/internal/config"
	"github.com/Volune/jackrabbit-filevault/internal/core/reconcile"
	"github.com/Volune/jackrabbit-filevault/internal/domain"
	"github.com/Volune/jackrabbit-filevault/internal/lock"
	"github.com/Volune/jackrabbit-filevault/internal/logger"
	"github.com/Volune/jackrabbit-filevault/internal/mimetype"
	"github.com/Volune/jackrabbit-filevault/internal/progress"
	"github.com/Volune/jackrabbit-filevault/internal/synclog"
	"github.com/Volune/jackrabbit-filevault/internal/vault"
)

// SyncService materializes configured sync roots onto the filesystem.
type SyncService struct {
	config   *config.Config
	fs       afero.Fs
	lock     *lock.FileLock
	audit    *synclog.Log
	reporter progress.Reporter
	log      logger.Logger
}

// NewSyncService creates a sync service from the loaded configuration.
func NewSyncService(cfg *config.Config) (*SyncService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	fileLock, err := lock.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("create file lock: %w", err)
	}

	audit := synclog.Discard()
	if cfg.SyncLog != "" {
		audit = synclog.NewFile(cfg.SyncLog)
	}

	return &SyncService{
		config: cfg,
		fs:     afero.NewOsFs(),
		lock:   fileLock,
		audit:  audit,
		log:    logger.Get(),
	}, nil
}

// SetFs overrides the filesystem, used by tests.
func (s *SyncService) SetFs(fs afero.Fs) {
	s.fs = fs
}

// SetProgressReporter installs a progress reporter for sync runs.
func (s *SyncService) SetProgressReporter(reporter progress.Reporter) {
	s.reporter = reporter
}

func (s *SyncService) getReporter() progress.Reporter {
	if s.reporter != nil {
		return s.reporter
	}
	return progress.NullReporter{}
}

// IsLocked reports whether another sync run holds the lock.
func (s *SyncService) IsLocked() bool {
	return s.lock.IsLocked()
}

// LockHolder returns the current lock holder, if any.
func (s *SyncService) LockHolder() (*lock.Holder, error) {
	return s.lock.CurrentHolder()
}

// ForceUnlock removes the lock regardless of ownership.
func (s *SyncService) ForceUnlock() error {
	return s.lock.ForceRelease()
}

// SyncRoot loads the snapshot of the named root and reconciles it into
// the root's target directory. The returned result lists every mutation
// in the order it was performed.
func (s *SyncService) SyncRoot(ctx context.Context, rootName string) (*domain.SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := s.config.GetRoot(rootName)
	if err != nil {
		s.log.Error("unknown sync root", "root", rootName, "error", err)
		return nil, err
	}

	s.log.Info("acquiring lock", "root", root.Name)
	if err := s.lock.Acquire(root.Name); err != nil {
		s.log.Error("failed to acquire sync lock", "root", root.Name, "error", err)
		return nil, err
	}
	defer func() {
		if err := s.lock.Release(); err != nil {
			s.log.Error("failed to release sync lock", "root", root.Name, "error", err)
		}
	}()

	tree, err := vault.LoadSnapshot(s.fs, root.Snapshot)
	if err != nil {
		s.log.Error("failed to load snapshot", "root", root.Name, "snapshot", root.Snapshot, "error", err)
		return nil, err
	}

	reporter := s.getReporter()
	reporter.RootStart(root.Name)

	res := domain.NewSyncResult()
	r := reconcile.New(s.fs, mimetype.NewTable(), s.audit, s.log)
	err = r.Sync(res, root.Path, tree, true)

	for _, entry := range res.Entries() {
		reporter.Mutation(entry)
	}
	reporter.RootDone(root.Name, res.Stats(), err)

	if err != nil {
		s.log.Error("sync failed", "root", root.Name, "error", err)
		return res, err
	}

	stats := res.Stats()
	s.log.Info("sync completed",
		"root", root.Name,
		"materialized", stats.Materialized,
		"added", stats.Added,
		"updated", stats.Updated,
	)
	return res, nil
}

// RemoveFile deletes a materialized file under the named root and
// resynchronizes its parent directory, so auxiliary artifacts removed
// together with the file are restored from the snapshot.
func (s *SyncService) RemoveFile(ctx context.Context, rootName, fsPath string) (*domain.SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := s.config.GetRoot(rootName)
	if err != nil {
		return nil, err
	}

	fsPath = filepath.Clean(fsPath)
	if !strings.HasPrefix(fsPath, root.Path+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside sync root %s", fsPath, root.Name)
	}

	if err := s.lock.Acquire(root.Name); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.lock.Release(); err != nil {
			s.log.Error("failed to release sync lock", "root", root.Name, "error", err)
		}
	}()

	tree, err := vault.LoadSnapshot(s.fs, root.Snapshot)
	if err != nil {
		return nil, err
	}

	parentDir := filepath.Dir(fsPath)
	parent, err := findDirNode(tree, root.Path, parentDir)
	if err != nil {
		return nil, err
	}

	res := domain.NewSyncResult()
	r := reconcile.New(s.fs, mimetype.NewTable(), s.audit, s.log)
	if err := r.SyncAfterDelete(res, parentDir, parent, fsPath); err != nil {
		s.log.Error("delete failed", "root", root.Name, "file", fsPath, "error", err)
		return res, err
	}

	s.log.Info("file removed", "root", root.Name, "file", fsPath)
	return res, nil
}

// findDirNode locates the directory node materialized at dirPath by
// walking the tree from the root's target directory.
func findDirNode(tree vault.Node, rootPath, dirPath string) (vault.Node, error) {
	current := tree
	currentDir := reconcile.ChildPath(rootPath, tree.Artifact().PlatformPath)

	if dirPath == currentDir {
		return current, nil
	}

	rel, err := filepath.Rel(currentDir, dirPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%w: %s is not inside %s", domain.ErrNotFound, dirPath, currentDir)
	}

	for _, segment := range strings.Split(rel, string(filepath.Separator)) {
		var next vault.Node
		for _, child := range current.Children() {
			if child.Kind().IsDirectory() && child.Artifact().PlatformPath == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: no directory node for %s", domain.ErrNotFound, dirPath)
		}
		current = next
	}
	return current, nil
}

// Close releases the audit log.
func (s *SyncService) Close() error {
	return s.audit.Close()
}
