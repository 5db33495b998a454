package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Volune/jackrabbit-filevault/internal/progress"
	"github.com/Volune/jackrabbit-filevault/internal/service"
)

var rmRoot string

var rmCmd = &cobra.Command{
	Use:   "rm <file...>",
	Short: "Remove materialized files and resync their directories",
	Long: `Rm deletes materialized files from a sync root's target directory
and resynchronizes each file's parent directory afterwards. Auxiliary
artifacts belonging to the directory aggregate are restored from the
snapshot if the deletion removed them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rmRoot == "" {
			return fmt.Errorf("--root is required")
		}

		svc, err := service.NewSyncService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}

			res, err := svc.RemoveFile(cmd.Context(), rmRoot, path)
			if err != nil {
				return fmt.Errorf("remove %s: %w", arg, err)
			}
			for _, entry := range res.Entries() {
				fmt.Printf("%s %s\n", progress.Marker(entry), entry.FsPath)
			}
		}
		return nil
	},
}

func init() {
	rmCmd.Flags().StringVar(&rmRoot, "root", "", "sync root the files belong to")
	rootCmd.AddCommand(rmCmd)
}
