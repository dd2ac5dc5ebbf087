package cli

import (
	"fmt"

	"civictracker/backend/internal/models"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(
		&cobra.Command{
			Use:   "status <id> <status>",
			Short: "Change a complaint's status and record it in the audit trail",
			Args:  cobra.ExactArgs(2),
			RunE:  runStatus,
		},
		&cobra.Command{
			Use:   "department <id> <department>",
			Short: "Reassign a complaint to another department",
			Args:  cobra.ExactArgs(2),
			RunE:  runDepartment,
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a complaint and its audit trail",
			Args:  cobra.ExactArgs(1),
			RunE:  runDelete,
		},
		&cobra.Command{
			Use:   "history <id>",
			Short: "Show the status history of a complaint",
			Args:  cobra.ExactArgs(1),
			RunE:  runHistory,
		},
	)
}

func printComplaint(cmd *cobra.Command, c *models.Complaint) error {
	if textFormat() {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "complaint %d: status=%s department=%s\n", c.ID, c.Status, c.Department)
		return err
	}
	return printJSON(cmd.OutOrStdout(), c)
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withDeps(cmd, func(d *deps) error {
		updated, err := d.manager.TransitionStatus(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		return printComplaint(cmd, updated)
	})
}

func runDepartment(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withDeps(cmd, func(d *deps) error {
		updated, err := d.manager.ReassignDepartment(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		return printComplaint(cmd, updated)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withDeps(cmd, func(d *deps) error {
		if err := d.manager.Delete(cmd.Context(), id); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%d}`+"\n", id)
		return err
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withDeps(cmd, func(d *deps) error {
		updates, err := d.manager.History(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !textFormat() {
			return printJSON(cmd.OutOrStdout(), updates)
		}
		for _, u := range updates {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", u.CreatedAt.Format("2006-01-02 15:04"), u.Message)
		}
		return nil
	})
}
