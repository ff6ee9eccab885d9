package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
	"github.com/spf13/cobra"
)

var upcomingDays int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show renewals due soon",
	Long: `Show charges due within the upcoming window, soonest first.

Examples:
  subtrack upcoming            # Next 14 days
  subtrack upcoming --days 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetSummaryHandler == nil {
			return errors.New("upcoming requires database connection")
		}

		summary, err := app.GetSummaryHandler.Handle(cmd.Context(), queries.GetSummaryQuery{
			UserID:     app.CurrentUserID,
			WindowDays: upcomingDays,
		})
		if err != nil {
			return fmt.Errorf("failed to load upcoming charges: %w", err)
		}

		if len(summary.Upcoming) == 0 {
			fmt.Println("No charges due in the window.")
			return nil
		}

		for _, charge := range summary.Upcoming {
			when := fmt.Sprintf("in %d days", charge.DaysUntil)
			switch charge.DaysUntil {
			case 0:
				when = "today"
			case 1:
				when = "tomorrow"
			}
			fmt.Printf("%s  %s  %.2f %s (%s)\n",
				charge.ChargeDate.Format("2006-01-02"),
				charge.Name,
				charge.Amount,
				charge.Currency,
				when,
			)
		}

		return nil
	},
}

func init() {
	upcomingCmd.Flags().IntVarP(&upcomingDays, "days", "d", 0, "window in days (default 14)")
	rootCmd.AddCommand(upcomingCmd)
}
