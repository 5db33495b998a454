package config

import (
	"fmt"
	"time"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

// Config represents the complete configuration for vlt-sync
type Config struct {
	// Roots define which content snapshots are materialized where
	Roots []domain.SyncRoot `mapstructure:"roots"`

	// Sync holds scheduling settings for daemon mode
	Sync SyncSettings `mapstructure:"sync"`

	// Log configures diagnostic logging
	Log LogSettings `mapstructure:"log"`

	// SyncLog is the path of the action log file (empty disables it)
	SyncLog string `mapstructure:"synclog"`

	// StateDir is where execution history and lock files live
	StateDir string `mapstructure:"state_dir"`
}

// SyncSettings control scheduled sync runs
type SyncSettings struct {
	// Interval between scheduled runs in daemon mode
	Interval time.Duration `mapstructure:"interval"`
}

// LogSettings configure the diagnostic logger
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return fmt.Errorf("%w: no sync roots defined", domain.ErrConfigInvalid)
	}

	// Check root name and target path uniqueness
	names := make(map[string]bool)
	paths := make(map[string]bool)
	for i := range c.Roots {
		r := &c.Roots[i]
		if err := r.Validate(); err != nil {
			return err
		}
		if names[r.Name] {
			return fmt.Errorf("%w: duplicate root name: %s", domain.ErrConfigInvalid, r.Name)
		}
		if paths[r.Path] {
			return fmt.Errorf("%w: root %s reuses target path %s", domain.ErrConfigInvalid, r.Name, r.Path)
		}
		names[r.Name] = true
		paths[r.Path] = true
	}

	if c.Sync.Interval < 0 {
		return fmt.Errorf("%w: sync interval cannot be negative", domain.ErrConfigInvalid)
	}

	return nil
}

// GetRoot returns a sync root by name
func (c *Config) GetRoot(name string) (*domain.SyncRoot, error) {
	for i := range c.Roots {
		if c.Roots[i].Name == name {
			return &c.Roots[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrRootNotFound, name)
}

// EnabledRoots returns the roots included in scheduled runs
func (c *Config) EnabledRoots() []domain.SyncRoot {
	var out []domain.SyncRoot
	for _, r := range c.Roots {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}
