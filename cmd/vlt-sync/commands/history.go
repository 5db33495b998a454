package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Volune/jackrabbit-filevault/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [root]",
	Short: "Show recorded sync executions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := state.NewManager(cfg.StateDir)
		if err != nil {
			return err
		}
		defer mgr.Close()

		var records []state.ExecutionRecord
		if len(args) == 1 {
			records, err = mgr.GetHistory(args[0], historyLimit)
		} else {
			records, err = mgr.GetAllHistory(historyLimit)
		}
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no executions recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROOT\tSTART\tDURATION\tSTATUS\tADDED\tUPDATED\tDELETED\tERROR")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				rec.RootName,
				rec.StartTime.Format("2006-01-02 15:04:05"),
				rec.EndTime.Sub(rec.StartTime).Round(time.Millisecond),
				rec.Status,
				rec.Added, rec.Updated, rec.Deleted,
				rec.Error,
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum records to show")
	rootCmd.AddCommand(historyCmd)
}
