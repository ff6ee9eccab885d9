package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search subscriptions",
	Long: `Search the subscription index by name, category, cycle, or currency.

Examples:
  subtrack search netflix
  subtrack search streaming`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.SearchIndexer == nil {
			return errors.New("search requires database connection")
		}

		entries, err := app.SearchIndexer.Search(cmd.Context(), app.CurrentUserID, args[0])
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		for _, entry := range entries {
			fmt.Printf("%s  %s\n", entry.Title, entry.Summary)
			fmt.Printf("    ID: %s\n", entry.SubscriptionID)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
