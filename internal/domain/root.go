package domain

import (
	"fmt"
	"path/filepath"
)

// SyncRoot pairs a content tree snapshot with the physical directory it
// is materialized into. A root is the unit of locking and of execution
// history.
type SyncRoot struct {
	// Name identifies the root in commands, locks and history
	Name string `mapstructure:"name"`

	// Snapshot is the path of the content tree snapshot file
	Snapshot string `mapstructure:"snapshot"`

	// Path is the physical directory the tree is materialized into
	Path string `mapstructure:"path"`

	// Enabled controls whether scheduled runs include this root
	Enabled bool `mapstructure:"enabled"`
}

// Validate checks the root definition for completeness
func (r *SyncRoot) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: root name cannot be empty", ErrConfigInvalid)
	}
	if r.Snapshot == "" {
		return fmt.Errorf("%w: root %s has no snapshot", ErrConfigInvalid, r.Name)
	}
	if r.Path == "" {
		return fmt.Errorf("%w: root %s has no target path", ErrConfigInvalid, r.Name)
	}
	if !filepath.IsAbs(r.Path) {
		return fmt.Errorf("%w: root %s target path must be absolute", ErrConfigInvalid, r.Name)
	}
	return nil
}
