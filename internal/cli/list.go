package cli

import (
	"fmt"
	"text/tabwriter"

	"civictracker/backend/internal/models"
	"civictracker/backend/internal/query"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints, newest first",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().StringP("search", "s", "", "Case-insensitive text in description, id or location")
	cmd.Flags().String("status", models.FilterAll, "Filter by status")
	cmd.Flags().String("category", models.FilterAll, "Filter by category")
	cmd.Flags().String("department", models.FilterAll, "Filter by department")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) error {
	var p query.Predicate
	p.SearchText, _ = cmd.Flags().GetString("search")
	p.Status, _ = cmd.Flags().GetString("status")
	p.Category, _ = cmd.Flags().GetString("category")
	p.Department, _ = cmd.Flags().GetString("department")

	return withDeps(cmd, func(d *deps) error {
		snap, err := d.snapshots.Get(cmd.Context())
		if err != nil {
			return err
		}
		complaints := query.Filter(snap.Complaints, p)

		if !textFormat() {
			return printJSON(cmd.OutOrStdout(), complaints)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tDEPARTMENT\tCATEGORY\tCREATED\tLOCATION")
		for _, c := range complaints {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Status, c.Department, c.Category, c.CreatedAt.Format("2006-01-02"), c.Location)
		}
		return tw.Flush()
	})
}
