package subscription

import (
	"fmt"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showPayments bool

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a subscription with its payment history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetSubscriptionHandler == nil {
			fmt.Println("Showing subscriptions requires database connection.")
			return nil
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subscription ID: %w", err)
		}

		detail, err := app.GetSubscriptionHandler.Handle(cmd.Context(), queries.GetSubscriptionQuery{
			SubscriptionID: id,
			UserID:         app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		fmt.Printf("%s\n", detail.Name)
		fmt.Printf("  ID: %s\n", detail.ID)
		fmt.Printf("  Amount: %.2f %s / %s\n", detail.Amount, detail.Currency, detail.Cycle)
		fmt.Printf("  Category: %s\n", detail.Category)
		fmt.Printf("  Since: %s\n", detail.ReferenceDate.Format("2006-01-02"))
		if detail.EndDate != nil {
			fmt.Printf("  Ends: %s\n", detail.EndDate.Format("2006-01-02"))
		}
		if detail.NextChargeDate != nil {
			fmt.Printf("  Next charge: %s\n", detail.NextChargeDate.Format("2006-01-02"))
		}
		fmt.Printf("  Monthly cost: %.2f %s\n", detail.MonthlyCost, detail.Currency)
		fmt.Printf("  Paid so far: %.2f %s over %d charges\n", detail.TotalSpent, detail.Currency, detail.PaymentCount)
		if detail.Notes != "" {
			fmt.Printf("  Notes: %s\n", detail.Notes)
		}
		if detail.IsArchived {
			fmt.Println("  [archived]")
		}

		if showPayments && len(detail.PaymentHistory) > 0 {
			fmt.Println("\nPayments (newest first):")
			for _, p := range detail.PaymentHistory {
				fmt.Printf("  %s  %.2f %s\n", p.Date.Format("2006-01-02"), p.Amount, detail.Currency)
			}
		}

		return nil
	},
}

func init() {
	showCmd.Flags().BoolVarP(&showPayments, "payments", "p", false, "list individual past charges")
}
