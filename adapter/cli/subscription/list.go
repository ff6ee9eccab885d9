package subscription

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
	"github.com/spf13/cobra"
)

var (
	listArchived  bool
	listCategory  string
	listSortBy    string
	listSortOrder string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions",
	Long: `List subscriptions with their next charge date and monthly cost.

Sort Options:
  --sort   Sort by field (name, amount, next_charge, created_at)
  --order  Sort order (asc, desc)

Examples:
  subtrack subscription list                       # All active subscriptions
  subtrack subscription list --archived            # Include archived
  subtrack subscription list --category streaming  # Streaming only
  subtrack subscription list --sort amount --order desc`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListSubscriptionsHandler == nil {
			fmt.Println("Listing subscriptions requires database connection.")
			return nil
		}

		query := queries.ListSubscriptionsQuery{
			UserID:          app.CurrentUserID,
			IncludeArchived: listArchived,
			Category:        listCategory,
			SortBy:          listSortBy,
			SortOrder:       listSortOrder,
		}

		subs, err := app.ListSubscriptionsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list subscriptions: %w", err)
		}

		if len(subs) == 0 {
			if listCategory != "" {
				fmt.Printf("No subscriptions in category %q.\n", listCategory)
			} else {
				fmt.Println("No subscriptions found. Add one with: subtrack subscription add \"Name\" -a 9.99")
			}
			return nil
		}

		fmt.Printf("Subscriptions (%d):\n", len(subs))
		fmt.Println(strings.Repeat("-", 70))

		for _, s := range subs {
			nextStr := "ended"
			if s.NextChargeDate != nil {
				nextStr = "next " + s.NextChargeDate.Format("2006-01-02")
			}

			archivedStr := ""
			if s.IsArchived {
				archivedStr = " [archived]"
			}

			fmt.Printf("%s  %.2f %s/%s (%s)%s\n",
				s.Name,
				s.Amount,
				s.Currency,
				s.Cycle,
				nextStr,
				archivedStr,
			)
			fmt.Printf("    ID: %s | category: %s | %.2f %s/month\n",
				s.ID, s.Category, s.MonthlyCost, s.Currency)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listArchived, "archived", "A", false, "include archived subscriptions")
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	listCmd.Flags().StringVar(&listSortBy, "sort", "", "sort by field (name, amount, next_charge, created_at)")
	listCmd.Flags().StringVar(&listSortOrder, "order", "", "sort order (asc, desc)")
}
