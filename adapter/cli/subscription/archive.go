package subscription

import (
	"fmt"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Archive a subscription",
	Long: `Archive a subscription. Archived subscriptions are hidden from
listings, projections, and reminders but keep their history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ArchiveSubscriptionHandler == nil {
			fmt.Println("Archiving subscriptions requires database connection.")
			return nil
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subscription ID: %w", err)
		}

		archiveCmd := commands.ArchiveSubscriptionCommand{
			SubscriptionID: id,
			UserID:         app.CurrentUserID,
		}

		if err := app.ArchiveSubscriptionHandler.Handle(cmd.Context(), archiveCmd); err != nil {
			return fmt.Errorf("failed to archive subscription: %w", err)
		}

		fmt.Printf("Archived subscription %s\n", id)
		return nil
	},
}
