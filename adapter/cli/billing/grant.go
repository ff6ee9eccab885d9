package billing

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/spf13/cobra"
)

var (
	grantFeature string
	grantActive  bool
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant or revoke a feature entitlement",
	Long: `Grant or revoke a premium feature for the current user.

Features:
  unlimited-subscriptions - Lift the free-tier subscription limit
  calendar-export         - Sync renewal dates to an external calendar

Examples:
  subtrack billing grant --feature unlimited-subscriptions
  subtrack billing grant --feature calendar-export --active=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.BillingService == nil {
			return errors.New("entitlement updates require database connection")
		}
		if grantFeature == "" {
			return errors.New("feature is required")
		}

		if err := app.BillingService.SetEntitlement(cmd.Context(), app.CurrentUserID, grantFeature, grantActive); err != nil {
			return err
		}

		status := "revoked"
		if grantActive {
			status = "granted"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entitlement %s: %s\n", status, grantFeature)
		return nil
	},
}

func init() {
	grantCmd.Flags().StringVar(&grantFeature, "feature", "", "feature name to grant")
	grantCmd.Flags().BoolVar(&grantActive, "active", true, "set entitlement active or inactive")
}
