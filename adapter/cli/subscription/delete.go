package subscription

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var deleteConfirmed bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a subscription permanently",
	Long: `Delete a subscription and its history. This cannot be undone;
prefer archive if you want to keep the record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteSubscriptionHandler == nil {
			fmt.Println("Deleting subscriptions requires database connection.")
			return nil
		}

		if !deleteConfirmed {
			return errors.New("deletion is permanent, re-run with --yes to confirm")
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subscription ID: %w", err)
		}

		deleteCmd := commands.DeleteSubscriptionCommand{
			SubscriptionID: id,
			UserID:         app.CurrentUserID,
		}

		if err := app.DeleteSubscriptionHandler.Handle(cmd.Context(), deleteCmd); err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}

		fmt.Printf("Deleted subscription %s\n", id)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteConfirmed, "yes", "y", false, "confirm permanent deletion")
}
