package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Volune/jackrabbit-filevault/internal/daemon"
	"github.com/Volune/jackrabbit-filevault/internal/service"
	"github.com/Volune/jackrabbit-filevault/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon, lock and last sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Daemon liveness via the PID file.
		if pidPath, err := daemon.DefaultPIDPath(); err == nil {
			pidFile := daemon.NewPIDFile(pidPath)
			if running, _ := pidFile.IsRunning(); running {
				pid, _ := pidFile.Read()
				fmt.Printf("daemon: running (pid %d)\n", pid)
			} else {
				fmt.Println("daemon: not running")
			}
		}

		svc, err := service.NewSyncService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if holder, err := svc.LockHolder(); err == nil {
			fmt.Printf("lock: held by pid %d on %s (root %s)\n",
				holder.PID, holder.Hostname, holder.RootName)
		} else {
			fmt.Println("lock: free")
		}

		mgr, err := state.NewManager(cfg.StateDir)
		if err != nil {
			return err
		}
		defer mgr.Close()

		for _, root := range cfg.Roots {
			last, err := mgr.GetLastSuccess(root.Name)
			switch {
			case err != nil:
				fmt.Printf("root %s: history unavailable (%v)\n", root.Name, err)
			case last == nil:
				fmt.Printf("root %s: never synced\n", root.Name)
			default:
				fmt.Printf("root %s: last success %s (%d added, %d updated, %d deleted)\n",
					root.Name,
					last.EndTime.Format("2006-01-02 15:04:05"),
					last.Added, last.Updated, last.Deleted)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
