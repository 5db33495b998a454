package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Volune/jackrabbit-filevault/internal/daemon"
	"github.com/Volune/jackrabbit-filevault/internal/logger"
	"github.com/Volune/jackrabbit-filevault/internal/service"
)

var daemonInterval time.Duration

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background sync process",
}

var daemonRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheduled syncs in the foreground",
	Long: `Run starts the interval scheduler and syncs every enabled root on
each tick until interrupted. A PID file guards against a second daemon
on the same configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pidPath, err := daemon.DefaultPIDPath()
		if err != nil {
			return err
		}
		pidFile := daemon.NewPIDFile(pidPath)
		if err := pidFile.Write(); err != nil {
			return err
		}
		defer pidFile.Remove()

		svc, err := service.NewDaemonService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		interval := daemonInterval
		if interval <= 0 {
			interval = cfg.Sync.Interval
		}

		ctx, stop := signal.NotifyContext(context.Background(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := svc.Start(ctx, interval); err != nil {
			return err
		}

		logger.Get().Info("daemon started", "interval", interval)
		<-ctx.Done()
		logger.Get().Info("daemon shutting down")
		return nil
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		pidPath, err := daemon.DefaultPIDPath()
		if err != nil {
			return err
		}
		pidFile := daemon.NewPIDFile(pidPath)

		running, err := pidFile.IsRunning()
		if err != nil || !running {
			return fmt.Errorf("daemon is not running")
		}
		if err := pidFile.Kill(); err != nil {
			return err
		}
		fmt.Println("daemon stopped")
		return nil
	},
}

func init() {
	daemonRunCmd.Flags().DurationVar(&daemonInterval, "interval", 0,
		"sync interval (overrides the configured value)")
	daemonCmd.AddCommand(daemonRunCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}
