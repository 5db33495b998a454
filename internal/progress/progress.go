// Package progress reports sync mutations as they happen.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

// Reporter receives mutation events during a sync run.
type Reporter interface {
	// RootStart announces that a sync root is about to be reconciled.
	RootStart(rootName string)
	// Mutation reports a single recorded filesystem mutation.
	Mutation(entry domain.SyncEntry)
	// RootDone announces that a sync root finished, with its totals.
	RootDone(rootName string, stats domain.SyncStats, err error)
}

// UpdateType indicates the kind of progress update.
type UpdateType int

const (
	UpdateRootStart UpdateType = iota
	UpdateMutation
	UpdateRootDone
)

// Update is one progress event delivered to a Callback.
type Update struct {
	Type  UpdateType
	Root  string
	Entry domain.SyncEntry
	Stats domain.SyncStats
	Err   error
}

// Callback receives progress updates.
type Callback func(update Update)

// CallbackReporter forwards events to a callback function.
type CallbackReporter struct {
	mu       sync.Mutex
	callback Callback
	root     string
}

// NewCallbackReporter creates a reporter backed by a callback.
func NewCallbackReporter(callback Callback) *CallbackReporter {
	return &CallbackReporter{callback: callback}
}

func (r *CallbackReporter) RootStart(rootName string) {
	r.mu.Lock()
	r.root = rootName
	callback := r.callback
	update := Update{Type: UpdateRootStart, Root: rootName}
	r.mu.Unlock()

	// Callback runs outside the lock so it may call back in.
	if callback != nil {
		callback(update)
	}
}

func (r *CallbackReporter) Mutation(entry domain.SyncEntry) {
	r.mu.Lock()
	callback := r.callback
	update := Update{Type: UpdateMutation, Root: r.root, Entry: entry}
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

func (r *CallbackReporter) RootDone(rootName string, stats domain.SyncStats, err error) {
	r.mu.Lock()
	callback := r.callback
	update := Update{Type: UpdateRootDone, Root: rootName, Stats: stats, Err: err}
	r.root = ""
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// ConsoleReporter writes one line per mutation, mirroring the markers
// of the sync log file (A added, U updated, D deleted).
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) RootStart(rootName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "syncing root %s\n", rootName)
}

func (r *ConsoleReporter) Mutation(entry domain.SyncEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s %s\n", Marker(entry), entry.FsPath)
}

func (r *ConsoleReporter) RootDone(rootName string, stats domain.SyncStats, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		fmt.Fprintf(r.w, "root %s failed: %v\n", rootName, err)
		return
	}
	fmt.Fprintf(r.w, "root %s: %s\n", rootName, FormatStats(stats))
}

// NullReporter discards all events.
type NullReporter struct{}

func (NullReporter) RootStart(rootName string)                                   {}
func (NullReporter) Mutation(entry domain.SyncEntry)                             {}
func (NullReporter) RootDone(rootName string, stats domain.SyncStats, err error) {}

// Marker returns the single-letter marker for a mutation.
func Marker(entry domain.SyncEntry) string {
	if entry.Op == domain.OpDelete {
		return "D"
	}
	if entry.Change == domain.ChangeUpdated {
		return "U"
	}
	return "A"
}

// FormatStats renders run totals as a single human-readable clause.
func FormatStats(stats domain.SyncStats) string {
	return fmt.Sprintf("%d added, %d updated, %d deleted",
		stats.Added, stats.Updated, stats.Deleted)
}
