// Package commands implements the vlt-sync command line interface.
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Volune/jackrabbit-filevault/internal/config"
	"github.com/Volune/jackrabbit-filevault/internal/domain"
	"github.com/Volune/jackrabbit-filevault/internal/logger"
)

var (
	cfgFile string

	// cfg is the loaded configuration, shared by all subcommands.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vlt-sync",
	Short: "Materialize content tree snapshots onto the filesystem",
	Long: `vlt-sync reconciles virtual content tree snapshots into local
directories. Each configured sync root names a snapshot file and a
target directory; syncing materializes the snapshot's files and
auxiliary artifacts under the target, normalizing text line endings
and recording every mutation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			if errors.Is(err, domain.ErrConfigNotFound) {
				return fmt.Errorf("no configuration found (searched %v): %w",
					config.DefaultConfigPaths(), err)
			}
			return err
		}

		return logger.Init(logger.Config{
			Level:  logger.ParseLevel(cfg.Log.Level),
			Format: logger.ParseFormat(cfg.Log.Format),
			File: logger.FileConfig{
				Enabled: cfg.Log.File != "",
				Path:    cfg.Log.File,
			},
		})
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Shutdown()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default searches ./vlt-sync.yaml and the user config dir)")
}
