// Package lock provides a file-based lock that serializes sync invocations
// against a shared state directory.
package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

const (
	// LockFileName is the name of the lock file inside the state directory.
	LockFileName = ".vlt-sync.lock"
	// DefaultStaleTimeout is the fallback age after which a lock from an
	// unreachable host is considered stale.
	DefaultStaleTimeout = 30 * time.Minute
)

// Holder describes the process that owns the lock.
type Holder struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartTime time.Time `json:"start_time"`
	RootName  string    `json:"root_name,omitempty"`
}

// FileLock guards a state directory against concurrent sync runs.
type FileLock struct {
	lockPath     string
	staleTimeout time.Duration
	held         *Holder
}

// New creates a lock rooted in the given state directory. An empty dir
// falls back to the user config directory.
func New(stateDir string) (*FileLock, error) {
	if stateDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		stateDir = filepath.Join(configDir, "vlt-sync")
	}

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	return &FileLock{
		lockPath:     filepath.Join(stateDir, LockFileName),
		staleTimeout: DefaultStaleTimeout,
	}, nil
}

// SetStaleTimeout overrides the cross-host staleness fallback.
func (l *FileLock) SetStaleTimeout(d time.Duration) {
	l.staleTimeout = d
}

// Acquire takes the lock on behalf of a sync run against the named root.
// A live lock held by another process yields domain.ErrSyncInProgress.
func (l *FileLock) Acquire(rootName string) error {
	if l.held != nil {
		// Re-entrant acquire from the same instance: refresh the root name.
		current, err := l.readHolder()
		if err == nil && l.ownsLock(current) {
			current.RootName = rootName
			if err := l.writeHolder(current); err != nil {
				return err
			}
			l.held.RootName = rootName
			return nil
		}
	}

	if current, err := l.readHolder(); err == nil {
		if !l.isStale(current) {
			return fmt.Errorf("%w: held by pid %d on %s since %s (root %q)",
				domain.ErrSyncInProgress,
				current.PID, current.Hostname,
				current.StartTime.Format(time.RFC3339), current.RootName)
		}
		if err := os.Remove(l.lockPath); err != nil {
			return fmt.Errorf("remove stale lock: %w", err)
		}
	}

	hostname, _ := os.Hostname()
	holder := &Holder{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartTime: time.Now(),
		RootName:  rootName,
	}

	// O_EXCL makes creation atomic against competing processes.
	file, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			if current, readErr := l.readHolder(); readErr == nil {
				return fmt.Errorf("%w: held by pid %d on %s",
					domain.ErrSyncInProgress, current.PID, current.Hostname)
			}
			return fmt.Errorf("%w: lost acquisition race", domain.ErrSyncInProgress)
		}
		return fmt.Errorf("create lock file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(holder); err != nil {
		os.Remove(l.lockPath)
		return fmt.Errorf("write lock holder: %w", err)
	}

	l.held = holder
	return nil
}

// Release drops the lock if this instance still owns it.
func (l *FileLock) Release() error {
	if l.held == nil {
		return nil
	}

	current, err := l.readHolder()
	if err != nil {
		l.held = nil
		return nil
	}

	if !l.ownsLock(current) {
		l.held = nil
		return fmt.Errorf("lock was taken over by another process")
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}

	l.held = nil
	return nil
}

// IsLocked reports whether a live lock currently exists.
func (l *FileLock) IsLocked() bool {
	holder, err := l.readHolder()
	if err != nil {
		return false
	}
	return !l.isStale(holder)
}

// CurrentHolder returns the live lock holder, if any.
func (l *FileLock) CurrentHolder() (*Holder, error) {
	holder, err := l.readHolder()
	if err != nil {
		return nil, err
	}
	if l.isStale(holder) {
		return nil, fmt.Errorf("lock is stale")
	}
	return holder, nil
}

// ForceRelease removes the lock file regardless of ownership.
func (l *FileLock) ForceRelease() error {
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("force remove lock: %w", err)
	}
	l.held = nil
	return nil
}

func (l *FileLock) readHolder() (*Holder, error) {
	data, err := os.ReadFile(l.lockPath)
	if err != nil {
		return nil, err
	}

	var holder Holder
	if err := json.Unmarshal(data, &holder); err != nil {
		return nil, fmt.Errorf("invalid lock file: %w", err)
	}
	return &holder, nil
}

func (l *FileLock) writeHolder(holder *Holder) error {
	data, err := json.MarshalIndent(holder, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.lockPath, data, 0644)
}

// isStale treats a same-host lock as stale only when its process is gone.
// The timeout applies only to locks from other hosts where the process
// cannot be probed.
func (l *FileLock) isStale(holder *Holder) bool {
	hostname, _ := os.Hostname()

	if holder.Hostname == hostname {
		return !processExists(holder.PID)
	}

	return time.Since(holder.StartTime) > l.staleTimeout
}

func (l *FileLock) ownsLock(holder *Holder) bool {
	if l.held == nil {
		return false
	}
	hostname, _ := os.Hostname()
	return holder.PID == os.Getpid() &&
		holder.Hostname == hostname &&
		l.held.StartTime.Equal(holder.StartTime) &&
		l.held.RootName == holder.RootName
}
