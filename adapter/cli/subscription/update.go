package subscription

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	updateName     string
	updateAmount   float64
	updateCurrency string
	updateCycle    string
	updateCategory string
	updateStart    string
	updateNotes    string
	updateClearEnd bool
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a subscription",
	Long: `Update subscription fields. Only flags you pass are changed.

Changing the amount, cycle, or start date reshapes the whole series:
projections and payment history always use the current values.

Examples:
  subtrack subscription update <id> --amount 12.99
  subtrack subscription update <id> --name "Netflix Premium" --category streaming
  subtrack subscription update <id> --clear-end`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateSubscriptionHandler == nil {
			fmt.Println("Updating subscriptions requires database connection.")
			return nil
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid subscription ID: %w", err)
		}

		updateCmd := commands.UpdateSubscriptionCommand{
			SubscriptionID: id,
			UserID:         app.CurrentUserID,
			ClearEndDate:   updateClearEnd,
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			updateCmd.Name = &updateName
		}
		if flags.Changed("amount") {
			updateCmd.Amount = &updateAmount
		}
		if flags.Changed("currency") {
			updateCmd.Currency = &updateCurrency
		}
		if flags.Changed("cycle") {
			updateCmd.Cycle = &updateCycle
		}
		if flags.Changed("category") {
			updateCmd.Category = &updateCategory
		}
		if flags.Changed("notes") {
			updateCmd.Notes = &updateNotes
		}
		if flags.Changed("start") {
			parsed, err := time.Parse("2006-01-02", updateStart)
			if err != nil {
				return fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", updateStart)
			}
			updateCmd.ReferenceDate = &parsed
		}

		if err := app.UpdateSubscriptionHandler.Handle(cmd.Context(), updateCmd); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		fmt.Printf("Updated subscription %s\n", id)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	updateCmd.Flags().Float64VarP(&updateAmount, "amount", "a", 0, "new charge amount")
	updateCmd.Flags().StringVar(&updateCurrency, "currency", "", "new currency code")
	updateCmd.Flags().StringVar(&updateCycle, "cycle", "", "new billing cycle (monthly, yearly)")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "new category")
	updateCmd.Flags().StringVar(&updateStart, "start", "", "new first charge date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "new notes")
	updateCmd.Flags().BoolVar(&updateClearEnd, "clear-end", false, "remove the end date")
}
