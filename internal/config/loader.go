package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

// DefaultInterval is used when the config file sets no sync interval
const DefaultInterval = 5 * time.Minute

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"./configs",
	}

	// Add user config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "vlt-sync"))
	}

	// Add home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "vlt-sync"))
		paths = append(paths, filepath.Join(homeDir, ".vlt-sync"))
	}

	return paths
}

// Load reads and parses a configuration file
// If path is empty, searches default locations for vlt-sync.yaml
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		// Use specific file
		v.SetConfigFile(path)
	} else {
		// Search default paths
		v.SetConfigName("vlt-sync")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	v.SetDefault("sync.interval", DefaultInterval)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	// Roots default to enabled unless explicitly disabled
	for i := range cfg.Roots {
		if !v.IsSet(fmt.Sprintf("roots.%d.enabled", i)) {
			cfg.Roots[i].Enabled = true
		}
	}

	if cfg.StateDir == "" {
		cfg.StateDir = defaultStateDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaultStateDir picks a per-user data directory for history and locks
func defaultStateDir() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "vlt-sync")
	}
	return ".vlt-sync"
}
