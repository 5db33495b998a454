package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Volune/jackrabbit-filevault/internal/progress"
	"github.com/Volune/jackrabbit-filevault/internal/service"
)

var syncQuiet bool

var syncCmd = &cobra.Command{
	Use:   "sync [root...]",
	Short: "Materialize one or more sync roots",
	Long: `Sync loads the snapshot of each named root and reconciles it into
the root's target directory. Without arguments, every enabled root is
synced. A second sync over an unchanged snapshot performs no writes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.NewSyncService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if !syncQuiet {
			svc.SetProgressReporter(progress.NewConsoleReporter(os.Stdout))
		}

		names := args
		if len(names) == 0 {
			for _, root := range cfg.EnabledRoots() {
				names = append(names, root.Name)
			}
			if len(names) == 0 {
				return fmt.Errorf("no enabled sync roots configured")
			}
		}

		for _, name := range names {
			if _, err := svc.SyncRoot(cmd.Context(), name); err != nil {
				return fmt.Errorf("root %s: %w", name, err)
			}
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&syncQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(syncCmd)
}
