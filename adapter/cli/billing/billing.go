package billing

import "github.com/spf13/cobra"

// Cmd is the billing command group.
var Cmd = &cobra.Command{
	Use:   "billing",
	Short: "Manage premium entitlements",
	Long:  `Inspect and toggle premium feature entitlements.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(grantCmd)
}
