package cli

import (
	"errors"
	"fmt"
	"strings"

	ratesDomain "github.com/felixgeelhaar/subtrack/internal/rates/domain"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
	"github.com/spf13/cobra"
)

var (
	summaryCurrency string
	summaryMonths   int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show spending summary and projections",
	Long: `Show a spending summary across all active subscriptions: monthly and
yearly totals, projected spend per month, and the most expensive
subscriptions.

Totals are converted into a single display currency. Pass --currency to
pick it, the default is USD.

Examples:
  subtrack summary
  subtrack summary --currency EUR
  subtrack summary --months 6`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.GetSummaryHandler == nil {
			return errors.New("summary requires database connection")
		}

		summary, err := app.GetSummaryHandler.Handle(cmd.Context(), queries.GetSummaryQuery{
			UserID:        app.CurrentUserID,
			HorizonMonths: summaryMonths,
		})
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}

		display := strings.ToUpper(summaryCurrency)
		if display == "" {
			display = ratesDomain.BaseCurrency
		}
		convert := func(amount float64) float64 {
			if app.RatesService == nil {
				return amount
			}
			return app.RatesService.Convert(amount, ratesDomain.BaseCurrency, display)
		}
		sym := ratesDomain.Symbol(display)

		fmt.Printf("Active subscriptions: %d\n", summary.ActiveCount)
		fmt.Printf("Monthly total: %s%.2f\n", sym, convert(summary.MonthlyTotal))
		fmt.Printf("Yearly total:  %s%.2f\n", sym, convert(summary.YearlyTotal))
		fmt.Printf("Next 30 days:  %s%.2f\n", sym, convert(summary.Next30DayTotal))
		fmt.Printf("Next 90 days:  %s%.2f\n", sym, convert(summary.Next90DayTotal))

		if len(summary.MonthlyBreakdown) > 0 {
			fmt.Println("\nProjected spend by month:")
			for _, bucket := range summary.MonthlyBreakdown {
				fmt.Printf("  %s  %s%.2f\n", bucket.Month.Format("Jan 2006"), sym, convert(bucket.Total))
			}
		}

		if len(summary.TopByMonthlyCost) > 0 {
			fmt.Println("\nMost expensive per month:")
			for _, s := range summary.TopByMonthlyCost {
				fmt.Printf("  %s  %s%.2f\n", s.Name, sym, convert(s.MonthlyCost))
			}
		}

		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryCurrency, "currency", "", "display currency (default USD)")
	summaryCmd.Flags().IntVar(&summaryMonths, "months", 0, "projection horizon in months (default 12)")
	rootCmd.AddCommand(summaryCmd)
}
