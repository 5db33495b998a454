package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Volune/jackrabbit-filevault/internal/config"
	"github.com/Volune/jackrabbit-filevault/internal/domain"
	"github.com/Volune/jackrabbit-filevault/internal/scheduler"
	"github.com/Volune/jackrabbit-filevault/internal/state"
)

// DaemonService runs scheduled syncs of all enabled roots.
type DaemonService struct {
	mu        sync.RWMutex
	config    *config.Config
	scheduler scheduler.Scheduler
	syncSvc   *SyncService
	stateMgr  *state.Manager
}

// DaemonStatus is a snapshot of the daemon state.
type DaemonStatus struct {
	Running        bool
	SchedulerStats *scheduler.Status
	LastExecution  *state.ExecutionRecord
}

// NewDaemonService wires a sync service and execution history store.
func NewDaemonService(cfg *config.Config) (*DaemonService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	syncSvc, err := NewSyncService(cfg)
	if err != nil {
		return nil, fmt.Errorf("create sync service: %w", err)
	}

	stateMgr, err := state.NewManager(cfg.StateDir)
	if err != nil {
		syncSvc.Close()
		return nil, fmt.Errorf("create state manager: %w", err)
	}

	return &DaemonService{
		config:   cfg,
		syncSvc:  syncSvc,
		stateMgr: stateMgr,
	}, nil
}

// SyncService exposes the underlying sync service, for progress wiring.
func (d *DaemonService) SyncService() *SyncService {
	return d.syncSvc
}

// Start launches the interval scheduler over all enabled roots.
func (d *DaemonService) Start(ctx context.Context, interval time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler != nil {
		return fmt.Errorf("daemon is already running")
	}

	runner := &syncRunner{
		config:   d.config,
		syncSvc:  d.syncSvc,
		stateMgr: d.stateMgr,
	}

	sched, err := scheduler.NewIntervalScheduler(scheduler.Config{
		Interval: interval,
	}, runner)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	d.scheduler = sched
	return nil
}

// Stop halts the scheduler.
func (d *DaemonService) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler == nil {
		return fmt.Errorf("daemon is not running")
	}

	if err := d.scheduler.Stop(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}

	d.scheduler = nil
	return nil
}

// Status reports scheduler state and the last recorded execution.
func (d *DaemonService) Status() *DaemonStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := &DaemonStatus{
		Running: d.scheduler != nil,
	}
	if d.scheduler != nil {
		status.SchedulerStats = d.scheduler.Status()
	}

	if d.stateMgr != nil {
		history, err := d.stateMgr.GetAllHistory(1)
		if err == nil && len(history) > 0 {
			status.LastExecution = &history[0]
		}
	}
	return status
}

// Close stops the scheduler and releases all resources.
func (d *DaemonService) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var lastErr error
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			lastErr = err
		}
		d.scheduler = nil
	}
	if d.syncSvc != nil {
		if err := d.syncSvc.Close(); err != nil {
			lastErr = err
		}
	}
	if d.stateMgr != nil {
		if err := d.stateMgr.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// syncRunner adapts SyncService to the scheduler contract and records
// every run in the execution history.
type syncRunner struct {
	config   *config.Config
	syncSvc  *SyncService
	stateMgr *state.Manager
}

// RunSync syncs the named root, or every enabled root when the name is
// empty. Roots are attempted independently and failures aggregated.
func (r *syncRunner) RunSync(ctx context.Context, rootName string) error {
	var roots []domain.SyncRoot
	if rootName != "" {
		root, err := r.config.GetRoot(rootName)
		if err != nil {
			return err
		}
		roots = []domain.SyncRoot{*root}
	} else {
		roots = r.config.EnabledRoots()
	}

	var errs []error
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		res, runErr := r.syncSvc.SyncRoot(ctx, root.Name)
		if res == nil {
			res = domain.NewSyncResult()
		}
		if err := r.stateMgr.RecordRun(root.Name, start, time.Now(), res, runErr); err != nil {
			errs = append(errs, fmt.Errorf("root %s: record run: %w", root.Name, err))
		}
		if runErr != nil {
			errs = append(errs, fmt.Errorf("root %s: %w", root.Name, runErr))
		}
	}
	return errors.Join(errs...)
}
