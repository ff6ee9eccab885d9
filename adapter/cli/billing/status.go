package billing

import (
	"fmt"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show feature entitlements",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.BillingService == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Billing status requires database connection.")
			return nil
		}

		entitlements, err := app.BillingService.ListEntitlements(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return err
		}
		if len(entitlements) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Free tier. No premium features enabled.")
			return nil
		}

		for _, e := range entitlements {
			state := "disabled"
			if e.Enabled {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", e.Feature, state)
		}

		return nil
	},
}
