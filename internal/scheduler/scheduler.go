// Package scheduler drives periodic sync runs for the daemon mode.
package scheduler

import (
	"context"
	"time"
)

// Scheduler is the contract daemon mode drives sync runs through.
type Scheduler interface {
	// Start begins the scheduling loop.
	Start(ctx context.Context) error

	// Stop shuts the scheduler down and waits for the loop to exit.
	Stop() error

	// Status returns a snapshot of the scheduler state.
	Status() *Status
}

// Status is a point-in-time view of scheduler activity.
type Status struct {
	Running        bool
	LastRunTime    time.Time
	NextRunTime    time.Time
	TotalRuns      int
	SuccessfulRuns int
	FailedRuns     int
	LastError      string
}

// Config selects what to run and how often.
type Config struct {
	// Interval is the duration between sync runs.
	Interval time.Duration

	// Roots names the sync roots to run. Empty means all enabled roots.
	Roots []string
}

// SyncRunner executes a sync for one named root. An empty name runs
// every enabled root.
type SyncRunner interface {
	RunSync(ctx context.Context, rootName string) error
}
