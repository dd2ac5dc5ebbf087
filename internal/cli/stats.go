package cli

import (
	"fmt"
	"time"

	"civictracker/backend/internal/analysis"
	"civictracker/backend/internal/models"

	"github.com/spf13/cobra"
)

// now is the evaluation time for stats. Replaced in tests.
var now = time.Now

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show complaint analytics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withDeps(cmd, func(d *deps) error {
		snap, err := d.snapshots.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		summary := analysis.Summarize(snap.Complaints, now())

		if !textFormat() {
			return printJSON(cmd.OutOrStdout(), summary)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "total: %d\n", summary.TotalCount)
		for _, st := range models.Statuses {
			fmt.Fprintf(out, "  %-14s %d\n", st, summary.CountByStatus[st])
		}
		fmt.Fprintf(out, "average resolution: %d days\n", summary.AverageResolutionDays)
		return nil
	})
}
