package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var ratesRefresh bool

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Show exchange rates",
	Long: `Show the exchange rate table used for currency conversion.

Examples:
  subtrack rates
  subtrack rates --refresh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.RatesService == nil {
			return errors.New("rates not configured")
		}

		if ratesRefresh {
			if err := app.RatesService.Refresh(cmd.Context()); err != nil {
				fmt.Printf("Refresh failed, using last known rates: %v\n", err)
			}
		}

		table := app.RatesService.Table()
		codes := make([]string, 0, len(table.Rates))
		for code := range table.Rates {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		fmt.Printf("Base: %s\n", table.Base)
		if !table.FetchedAt.IsZero() {
			fmt.Printf("Fetched: %s\n", table.FetchedAt.Format("2006-01-02 15:04"))
		}
		for _, code := range codes {
			fmt.Printf("  %s  %.4f\n", code, table.Rates[code])
		}

		return nil
	},
}

func init() {
	ratesCmd.Flags().BoolVar(&ratesRefresh, "refresh", false, "fetch fresh rates before printing")
	rootCmd.AddCommand(ratesCmd)
}
