package subscription

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var endDate string

var endCmd = &cobra.Command{
	Use:   "end [id]",
	Short: "End a subscription",
	Long: `Set the last day of a subscription. Charges after that date
no longer appear in projections, reminders, or calendar exports.

Examples:
  subtrack subscription end <id>                   # Ends today
  subtrack subscription end <id> --date 2025-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.EndSubscriptionHandler == nil {
			fmt.Println("Ending subscriptions requires database connection.")
			return nil
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subscription ID: %w", err)
		}

		end := time.Now()
		if endDate != "" {
			parsed, err := time.Parse("2006-01-02", endDate)
			if err != nil {
				return fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", endDate)
			}
			end = parsed
		}

		endCmd := commands.EndSubscriptionCommand{
			SubscriptionID: id,
			UserID:         app.CurrentUserID,
			EndDate:        end,
		}

		if err := app.EndSubscriptionHandler.Handle(cmd.Context(), endCmd); err != nil {
			return fmt.Errorf("failed to end subscription: %w", err)
		}

		fmt.Printf("Subscription %s ends on %s\n", id, end.Format("2006-01-02"))
		return nil
	},
}

func init() {
	endCmd.Flags().StringVarP(&endDate, "date", "d", "", "last day of the subscription (YYYY-MM-DD, default today)")
}
