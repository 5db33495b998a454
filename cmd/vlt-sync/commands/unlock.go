package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Volune/jackrabbit-filevault/internal/service"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Forcibly remove a leftover sync lock",
	Long: `Unlock removes the sync lock file without checking ownership. Only
use it when the holding process is known to be dead and the lock was
not cleaned up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := service.NewSyncService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if !svc.IsLocked() {
			fmt.Println("lock is already free")
			return nil
		}
		if err := svc.ForceUnlock(); err != nil {
			return err
		}
		fmt.Println("lock removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}
