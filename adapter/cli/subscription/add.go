package subscription

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/spf13/cobra"
)

var (
	addAmount   float64
	addCurrency string
	addCycle    string
	addCategory string
	addStart    string
	addEnd      string
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new subscription",
	Long: `Add a recurring subscription to track.

Billing cycles:
  monthly - Charges every month
  yearly  - Charges once a year

Categories:
  streaming, music, software, gaming, fitness, news,
  cloud_storage, productivity, entertainment, other

Examples:
  subtrack subscription add "Netflix" -a 9.99 --cycle monthly --category streaming
  subtrack subscription add "iCloud+" -a 36.00 --cycle yearly --category cloud_storage
  subtrack subscription add "Trial" -a 4.99 --start 2025-06-01 --end 2025-09-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateSubscriptionHandler == nil {
			fmt.Println("Adding subscriptions requires database connection.")
			return nil
		}

		name := args[0]

		start := time.Now()
		if addStart != "" {
			parsed, err := time.Parse("2006-01-02", addStart)
			if err != nil {
				return fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", addStart)
			}
			start = parsed
		}

		var end *time.Time
		if addEnd != "" {
			parsed, err := time.Parse("2006-01-02", addEnd)
			if err != nil {
				return fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", addEnd)
			}
			end = &parsed
		}

		createCmd := commands.CreateSubscriptionCommand{
			UserID:        app.CurrentUserID,
			Name:          name,
			Amount:        addAmount,
			Currency:      addCurrency,
			Cycle:         addCycle,
			Category:      addCategory,
			ReferenceDate: start,
			EndDate:       end,
			Notes:         addNotes,
		}

		result, err := app.CreateSubscriptionHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to add subscription: %w", err)
		}

		fmt.Printf("Added subscription: %s\n", name)
		fmt.Printf("  ID: %s\n", result.SubscriptionID)
		fmt.Printf("  Amount: %.2f %s / %s\n", addAmount, addCurrency, addCycle)
		if addCategory != "" {
			fmt.Printf("  Category: %s\n", addCategory)
		}
		if end != nil {
			fmt.Printf("  Ends: %s\n", end.Format("2006-01-02"))
		}

		return nil
	},
}

func init() {
	addCmd.Flags().Float64VarP(&addAmount, "amount", "a", 0, "charge amount per cycle")
	addCmd.Flags().StringVar(&addCurrency, "currency", "USD", "currency code (USD, EUR, GBP, TRY)")
	addCmd.Flags().StringVar(&addCycle, "cycle", "monthly", "billing cycle (monthly, yearly)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "display category")
	addCmd.Flags().StringVar(&addStart, "start", "", "first charge date (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVar(&addEnd, "end", "", "last day of the subscription (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
}
